package raster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"mupdf", BackendMuPDF},
		{"MuPDF", BackendMuPDF},
		{"", BackendMuPDF},
		{"vips", BackendVips},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			r, err := New(tt.backend, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Name())
		})
	}

	t.Run("unknown backend", func(t *testing.T) {
		r, err := New("ghostscript", 0)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrUnknownBackend)
		assert.Contains(t, err.Error(), "ghostscript")
	})
}

func TestValidateDPI(t *testing.T) {
	assert.NoError(t, ValidateDPI(150))
	assert.NoError(t, ValidateDPI(300))
	assert.NoError(t, ValidateDPI(MaxDPI))
	assert.ErrorIs(t, ValidateDPI(0), ErrInvalidDPI)
	assert.ErrorIs(t, ValidateDPI(-72), ErrInvalidDPI)
	assert.ErrorIs(t, ValidateDPI(MaxDPI+1), ErrInvalidDPI)
}

func TestPageLimit(t *testing.T) {
	assert.Equal(t, 10, pageLimit(10, 0))
	assert.Equal(t, 3, pageLimit(10, 3))
	assert.Equal(t, 2, pageLimit(2, 3))
	assert.Equal(t, 0, pageLimit(0, 3))
}

func TestRender_InvalidDPIIsCheckedFirst(t *testing.T) {
	called := false
	fn := func(page int, png []byte) error {
		called = true
		return nil
	}

	for _, r := range []Rasterizer{NewMuPDFRasterizer(0), NewVipsRasterizer(0)} {
		err := r.Render(context.Background(), []byte("%PDF"), 0, fn)
		assert.ErrorIs(t, err, ErrInvalidDPI, r.Name())
	}
	assert.False(t, called)
}

func TestMuPDFRasterizer_InvalidDocument(t *testing.T) {
	err := NewMuPDFRasterizer(0).Render(context.Background(), []byte("not a pdf"), 150, func(int, []byte) error {
		return nil
	})
	assert.Error(t, err)
}
