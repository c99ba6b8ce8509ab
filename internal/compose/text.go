package compose

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// BundledFontName is the calligraphy font shipped in the assets directory.
const BundledFontName = "STXINGKA.TTF"

const (
	titleFontSize = 70
	titleLinePad  = 10
	dateFontSize  = 12
	dateScale     = 3
	textPadding   = 50
)

var textColor = color.NRGBA{R: 10, G: 10, B: 10, A: 255}

// fontProvider loads a font face at the requested point size. Providers are
// tried in order; the first successful load wins.
type fontProvider func(size float64) (font.Face, error)

func fontChain(explicitPath, assetsDir string) []fontProvider {
	return []fontProvider{
		fileFont(explicitPath),
		fileFont(filepath.Join(assetsDir, BundledFontName)),
		builtinFont,
	}
}

func fileFont(path string) fontProvider {
	return func(size float64) (font.Face, error) {
		if path == "" {
			return nil, fmt.Errorf("no font path")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return truetype.NewFace(f, &truetype.Options{Size: size}), nil
	}
}

func builtinFont(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// resolveFace walks the provider chain; the bitmap face is the renderer of
// last resort and always succeeds.
func resolveFace(providers []fontProvider, size float64) font.Face {
	for _, p := range providers {
		if face, err := p(size); err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// renderLine draws text onto a transparent raster and crops it to the inked
// bounds, so callers can center and stack lines by pixel width.
func renderLine(text string, face font.Face) *image.NRGBA {
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	w, h := measure.MeasureString(text)

	dc := gg.NewContext(int(w)+2*textPadding, int(h)+2*textPadding)
	dc.SetFontFace(face)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(text, float64(dc.Width())/2, float64(dc.Height())/2, 0.5, 0.5)

	return cropToContent(imaging.Clone(dc.Image()))
}

// renderDate renders the date label at its nominal size and scales the
// whole raster up by the fixed date factor.
func renderDate(label string, providers []fontProvider) *image.NRGBA {
	img := renderLine(label, resolveFace(providers, dateFontSize))
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*dateScale, b.Dy()*dateScale, imaging.Lanczos)
}
