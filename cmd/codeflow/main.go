// # cmd/codeflow/main.go
package main

import (
	"codeflow/internal/ui/cli"
	"os"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
