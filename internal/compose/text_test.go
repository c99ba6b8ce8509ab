package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFaceFallsBackToBuiltin(t *testing.T) {
	chain := fontChain(filepath.Join(t.TempDir(), "missing.ttf"), t.TempDir())
	face := resolveFace(chain, titleFontSize)
	require.NotNil(t, face)

	// The builtin face must actually render something.
	img := renderLine("Hello", face)
	assert.Greater(t, img.Bounds().Dx(), 0)
	assert.Greater(t, img.Bounds().Dy(), 0)
}

func TestRenderLineIsCroppedToInk(t *testing.T) {
	face := resolveFace(fontChain("", t.TempDir()), titleFontSize)
	img := renderLine("Ag", face)

	b := img.Bounds()
	var firstCol, lastCol, firstRow, lastRow bool
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if img.NRGBAAt(b.Min.X, y).A > 0 {
			firstCol = true
		}
		if img.NRGBAAt(b.Max.X-1, y).A > 0 {
			lastCol = true
		}
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		if img.NRGBAAt(x, b.Min.Y).A > 0 {
			firstRow = true
		}
		if img.NRGBAAt(x, b.Max.Y-1).A > 0 {
			lastRow = true
		}
	}
	assert.True(t, firstCol && lastCol && firstRow && lastRow, "cropped raster must touch ink on every edge")
}

func TestRenderLineWidthGrowsWithText(t *testing.T) {
	face := resolveFace(fontChain("", t.TempDir()), titleFontSize)
	short := renderLine("AAA", face)
	long := renderLine("AAAAAAA", face)
	assert.Greater(t, long.Bounds().Dx(), short.Bounds().Dx())
}

func TestRenderDateScalesByFixedFactor(t *testing.T) {
	providers := fontChain("", t.TempDir())
	base := renderLine("2025-11-26", resolveFace(providers, dateFontSize))
	scaled := renderDate("2025-11-26", providers)

	assert.Equal(t, base.Bounds().Dx()*dateScale, scaled.Bounds().Dx())
	assert.Equal(t, base.Bounds().Dy()*dateScale, scaled.Bounds().Dy())
}

func TestFileFontRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0o644))

	_, err := fileFont(bad)(titleFontSize)
	assert.Error(t, err)
}
