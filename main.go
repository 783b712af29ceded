package main

import (
	"os"

	"github.com/nbreview/nbreview/internal/cli"
)

func main() {
	code, _ := cli.Run(os.Args, nil)
	os.Exit(code)
}
