package main

import (
	"os"

	"github.com/dshills/reviewloop/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
