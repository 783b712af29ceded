// Package align aligns variants of a cell's source text against a base, line by line, and aligns whole cells across two notebooks.
//
// Everything is anchored to the base. A LineAlignment has exactly one BaseRow per base line, in base order, plus insertion batches attached to base positions:
//   - StatusEqual: the base line is present unchanged in the variant.
//   - StatusChange: the base line was replaced by a variant line (positional pairing inside a change block).
//   - StatusDelete: the base line has no counterpart in the variant.
//   - InsertsAt[p]: variant-only lines that appear immediately after base line p (p == 0 means before the first base line).
//
// Invariants:
//   - len(BaseRows) == len(base), and BaseRows[i].BaseText == base[i].
//   - Walking p = 0..len(base), emitting InsertsAt[p] and then BaseRows[p]'s variant line (if any), reproduces the variant exactly.
//   - Variant line numbers collected in that order are exactly 1..len(variant).
//
// Chunking: the variant is first decomposed against the base into common/removed/added runs with a longest-common-subsequence line diff. A removed run immediately
// followed by an added run is a change block: the two runs are paired positionally up to the shorter length, the rest are deletes (removed longer) or an insertion batch
// at the current base position (added longer). The pairing is a policy, not a minimal sub-alignment; it is intentionally kept simple and stable.
//
// Three notebooks: Reconcile aligns base-vs-B and base-vs-C independently (B and C are never compared) and zips the two results into ThreeWayRows, one per base line and
// one per zipped pair of insertions at a shared base position.
//
// Cells: AlignCells matches two cell lists by identity key (not content) with an LCS over keys. Unmatched other-cells become insertion batches anchored to base
// positions; unmatched base cells have no counterpart.
//
// All functions are pure and safe for concurrent use. Cost is O(m·n) in time and space for both line and cell alignment; callers should bound their inputs.
//
// Newlines: callers are expected to split text with SplitLines, which normalizes CRLF and lone CR to LF.
package align
