package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers like a pdfextract server, failing documents that do
// not start with the PDF magic
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/extract_text":
			file, _, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"status":"error","message":"no file uploaded"}`))
				return
			}
			defer file.Close()
			data, _ := io.ReadAll(file)
			if !bytes.HasPrefix(data, []byte("%PDF")) {
				_, _ = w.Write([]byte(`{"status":"error","message":"malformed PDF"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"success","method_used":"Text-based","text":"extracted body","pages":1,"duration_ms":3}`))
		case "/api/v1/engines":
			_, _ = w.Write([]byte(`{"min_text_length":40,"engines":[
				{"method":"OCR - Fast","engine":"Tesseract Fast","rasterizer":"mupdf","dpi":150,"available":true},
				{"method":"OCR - High Accuracy","engine":"Tesseract CLI","rasterizer":"vips","dpi":300,"available":true}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Flag values persist on the shared root command between runs
	quiet, noHeaders, debug = false, false, false

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExtractCommand_Remote(t *testing.T) {
	server := fakeServer(t)
	doc := writeFile(t, "doc.pdf", "%PDF-1.4 body")

	out, err := execute(t, "", "extract", doc, "--server", server.URL, "-o", "json")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "Text-based", resp["method_used"])
	assert.Equal(t, "extracted body", resp["text"])
}

func TestExtractCommand_QuietFromStdin(t *testing.T) {
	server := fakeServer(t)

	out, err := execute(t, "%PDF-1.7 piped", "extract", "-", "--server", server.URL, "-o", "table", "-q")
	require.NoError(t, err)
	assert.Equal(t, "extracted body\n", out)
}

func TestExtractCommand_FailedDocumentExitsNonZero(t *testing.T) {
	server := fakeServer(t)
	good := writeFile(t, "good.pdf", "%PDF-1.4")
	bad := writeFile(t, "bad.pdf", "not a pdf")

	out, err := execute(t, "", "extract", good, bad, "--server", server.URL, "-o", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, out, "==> "+good+" <==")
	assert.Contains(t, out, "message: malformed PDF")
}

func TestExtractCommand_MissingFile(t *testing.T) {
	server := fakeServer(t)

	_, err := execute(t, "", "extract", filepath.Join(t.TempDir(), "missing.pdf"), "--server", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestExtractCommand_InvalidOutputFormat(t *testing.T) {
	_, err := execute(t, "", "extract", "x.pdf", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestEnginesCommand_Remote(t *testing.T) {
	server := fakeServer(t)

	out, err := execute(t, "", "engines", "--server", server.URL, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "OCR - Fast")
	assert.Contains(t, out, "OCR - High Accuracy")
	assert.Contains(t, out, "mupdf")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pdfextract CLI "+Version)
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, "", "serve", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
