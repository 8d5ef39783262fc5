package main

import (
	"os"

	"github.com/funvibe/revo/pkg/cli"
)

func main() {
	os.Exit(cli.Entry(os.Args[1:]))
}
