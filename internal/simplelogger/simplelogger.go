package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

// EnvVar names the environment variable that holds the log file path.
const EnvVar = "NBREVIEW_LOG_FILE"

var mu sync.Mutex

// Log is a minimal printf-style logger. It appends formatted output to the file
// specified by NBREVIEW_LOG_FILE.
//
// If NBREVIEW_LOG_FILE is unset/empty or the path can't be opened as a file,
// Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}

// Since logs the formatted message followed by the time elapsed since start. Intended for defer:
//
//	defer simplelogger.Since(time.Now(), "compare %d notebooks", n)
func Since(start time.Time, format string, args ...any) {
	if os.Getenv(EnvVar) == "" {
		return
	}
	Log("%s (%s)", fmt.Sprintf(format, args...), time.Since(start).Round(time.Microsecond))
}
