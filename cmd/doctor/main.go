package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalidReport) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
