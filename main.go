package main

import (
	"os"

	"github.com/boris-k201/capsule-to-epub/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
