package main

import (
	"os"

	"github.com/ariel-frischer/quacker/internal/cli"
	clierrors "github.com/ariel-frischer/quacker/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(clierrors.ExitCode(err))
	}
}
