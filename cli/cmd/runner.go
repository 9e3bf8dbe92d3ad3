package cmd

import (
	"context"
	"fmt"

	"github.com/fluxbase-eu/pdfextract/cli/client"
	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/pipeline"
	"github.com/fluxbase-eu/pdfextract/internal/raster"
)

// runner performs extractions either in-process or against a server
type runner interface {
	Extract(ctx context.Context, filename string, pdf []byte) (*extract.Response, error)
	Engines(ctx context.Context) ([]pipeline.EngineStatus, error)
	Close() error
}

// newRunner picks the remote runner when --server is set
func newRunner() (runner, error) {
	if serverURL != "" {
		return &remoteRunner{client: client.NewClient(serverURL, client.WithDebug(debug))}, nil
	}
	return newLocalRunner(cfgFile)
}

type remoteRunner struct {
	client *client.Client
}

func (r *remoteRunner) Extract(ctx context.Context, filename string, pdf []byte) (*extract.Response, error) {
	return r.client.Extract(ctx, filename, pdf)
}

func (r *remoteRunner) Engines(ctx context.Context) ([]pipeline.EngineStatus, error) {
	info, err := r.client.Engines(ctx)
	if err != nil {
		return nil, err
	}
	return info.Engines, nil
}

func (r *remoteRunner) Close() error {
	return nil
}

type localRunner struct {
	pipeline *pipeline.Pipeline
}

func newLocalRunner(path string) (*localRunner, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	raster.InitVips()
	p, err := pipeline.New(cfg, pipeline.Options{})
	if err != nil {
		raster.ShutdownVips()
		return nil, fmt.Errorf("failed to build extraction pipeline: %w", err)
	}
	return &localRunner{pipeline: p}, nil
}

// Extract mirrors the server: cascade failures become the error shape
func (r *localRunner) Extract(ctx context.Context, filename string, pdf []byte) (*extract.Response, error) {
	result, err := r.pipeline.Extractor.Extract(ctx, pdf)
	if err != nil {
		resp := extract.NewErrorResponse(err)
		return &resp, nil
	}
	resp := extract.NewSuccessResponse(result)
	return &resp, nil
}

func (r *localRunner) Engines(ctx context.Context) ([]pipeline.EngineStatus, error) {
	return r.pipeline.Engines(), nil
}

func (r *localRunner) Close() error {
	defer raster.ShutdownVips()
	return r.pipeline.Close()
}
