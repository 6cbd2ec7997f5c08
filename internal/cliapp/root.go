// Package cliapp implements the tusclient command, a thin cobra-based
// wrapper around the tus package for manual and demo use. The library
// itself stays CLI-free; this package is the one place that ties config
// loading, the client, and a terminal together.
package cliapp

import (
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/tusclient/go-tus/internal/cliconfig"
	"github.com/tusclient/go-tus/tus"
)

// Execute runs the tusclient root command.
func Execute() error {
	root := &cobra.Command{
		Use:   "tusclient",
		Short: "Upload files to a tus resumable-upload server",
	}

	root.AddCommand(newUploadCmd())
	root.AddCommand(newResumeCmd())
	root.AddCommand(newConcatCmd())
	root.AddCommand(newDeleteCmd())

	return root.Execute()
}

func newClient() (*tus.Client, error) {
	cfg, source, err := cliconfig.Load()
	if err != nil {
		return nil, err
	}

	logger := log.NewLogger()
	logger.Debugf("tusclient: loaded configuration from %s", source)

	return tus.NewClient(cfg.ToTusConfig(), logger, nil)
}

func printUploadResult(key string, offset int64) {
	fmt.Printf("server key: %s\n", key)
	fmt.Printf("offset:     %s\n", units.HumanSizeWithPrecision(float64(offset), 3))
}
