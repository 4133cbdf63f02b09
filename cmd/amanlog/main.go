// Package main provides the entry point for the amanlog CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/amanlog/cmd/amanlog/cmd"
	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, amerrors.FormatForCLI(err))
		os.Exit(1)
	}
}
