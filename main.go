package main

import (
	"os"

	"github.com/dtaibeau/youtube-proj/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
