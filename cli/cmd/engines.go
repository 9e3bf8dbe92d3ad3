package cmd

import (
	"github.com/spf13/cobra"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show the OCR fallbacks",
	Long: `Show the OCR fallbacks in the order they are tried, with their rasterizer,
resolution and whether the engine is usable on this machine or server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner()
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		engines, err := r.Engines(cmd.Context())
		if err != nil {
			return err
		}
		formatter.PrintEngines(engines)
		return nil
	},
}
