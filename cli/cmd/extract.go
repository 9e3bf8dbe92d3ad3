package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/pdfextract/cli/output"
	"github.com/fluxbase-eu/pdfextract/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE [FILE...]",
	Short: "Extract text from PDF files",
	Long: `Extract text from one or more PDF files. Use - to read a document from stdin.

The command exits non-zero when any document fails to extract.

Examples:
  pdfextract-cli extract invoice.pdf
  pdfextract-cli extract scan.pdf -o json
  pdfextract-cli extract - -q < scan.pdf > scan.txt
  pdfextract-cli extract *.pdf --server http://localhost:8000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	failed := 0
	for _, path := range args {
		data, name, err := readDocument(cmd, path)
		if err != nil {
			return err
		}

		resp, err := r.Extract(cmd.Context(), name, data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if len(args) > 1 && !quiet && formatter.Format == output.FormatTable {
			formatter.PrintInfo("==> " + path + " <==")
		}
		formatter.PrintExtraction(resp)

		if resp.Status != extract.StatusSuccess {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to extract", failed, len(args))
	}
	return nil
}

func readDocument(cmd *cobra.Command, path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin.pdf", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, filepath.Base(path), nil
}
