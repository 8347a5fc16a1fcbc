package main

import (
	"os"

	"github.com/blacktop/postcraft/cmd"
	"github.com/blacktop/postcraft/internal/logutil"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logutil.Errorf("%v", err)
		os.Exit(1)
	}
}
