package main

import (
	"os"

	"github.com/henderiw/intervalset/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
