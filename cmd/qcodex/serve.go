package main

import (
	"github.com/bmcnabb/qcodex/internal/service"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction HTTP service",
		Long: `Serve starts the qcodex HTTP API. Configuration comes from
QCODEX_* environment variables; QCODEX_API_KEY is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.Run()
		},
	}
}
