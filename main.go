package main

import (
	"os"

	"github.com/AnyUserName/cardmosaic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
