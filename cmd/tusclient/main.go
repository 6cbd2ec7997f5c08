package main

import (
	"fmt"
	"os"

	"github.com/tusclient/go-tus/internal/cliapp"
)

func main() {
	if err := cliapp.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
