package cmd

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/pdfextract/internal/api"
	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/fluxbase-eu/pdfextract/internal/observability"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP server",
	Long: `Start the pdfextract HTTP server in the foreground. Configuration is read from
--config or pdfextract.yaml and PDFEXTRACT_* environment variables.

Examples:
  pdfextract-cli serve
  pdfextract-cli serve --address :9000 --config /etc/pdfextract/pdfextract.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if serveAddress != "" {
			cfg.Server.Address = serveAddress
		}

		// Server logs are the output here
		if cfg.Debug || debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
		observability.ServiceVersion = Version

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return api.Serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address, overrides server.address")
}
