package main

import (
	"os"

	"github.com/ktakeda47/jikanwari/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
