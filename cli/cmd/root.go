// Package cmd provides the Cobra commands for the pdfextract CLI.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxbase-eu/pdfextract/cli/output"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	serverURL string
	outputFmt string
	noHeaders bool
	quiet     bool
	debug     bool

	// Shared across commands
	formatter *output.Formatter
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pdfextract-cli",
	Short: "pdfextract CLI - Extract text from PDF documents",
	Long: `pdfextract CLI extracts text from PDF documents, falling back from the
embedded text layer to fast OCR and then to high accuracy OCR.

Documents are processed locally unless --server points at a running
pdfextract server, in which case they are uploaded to it.

Get started:
  pdfextract-cli extract scan.pdf                 Extract locally
  pdfextract-cli extract scan.pdf --server URL    Extract on a server
  pdfextract-cli engines                          Show the OCR fallbacks`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silence errors only when --quiet is used
		cmd.SilenceErrors = quiet
		initLogger()

		format, err := output.ParseFormat(outputFmt)
		if err != nil {
			return err
		}
		formatter = output.NewFormatter(format, noHeaders, quiet)
		formatter.Writer = cmd.OutOrStdout()
		return nil
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"pdfextract.yaml used for local extraction (default is ./pdfextract.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "",
		"URL of a pdfextract server; extract locally when empty")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false,
		"hide table headers")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"print only the extracted text")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug output")

	// Bind environment variables
	viper.SetEnvPrefix("PDFEXTRACT")
	_ = viper.BindEnv("server") // PDFEXTRACT_SERVER
	_ = viper.BindEnv("debug")  // PDFEXTRACT_DEBUG

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	viper.AutomaticEnv()

	if serverURL == "" {
		serverURL = viper.GetString("server")
	}
	if viper.GetBool("debug") {
		debug = true
	}
}

// initLogger sends logs to stderr so stdout carries only command output
func initLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// GetFormatter returns the output formatter (for use by subcommands)
func GetFormatter() *output.Formatter {
	if formatter == nil {
		format, _ := output.ParseFormat(outputFmt)
		formatter = output.NewFormatter(format, noHeaders, quiet)
	}
	return formatter
}

// IsDebug returns true if debug mode is enabled
func IsDebug() bool {
	return debug
}
