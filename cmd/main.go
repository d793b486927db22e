package main

import (
	"os"

	"github.com/cinegraph/cinegraph/cmd/cinegraph"
)

func main() {
	if err := cinegraph.Execute(); err != nil {
		os.Exit(1)
	}
}
