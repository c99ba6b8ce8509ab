// Package compose builds the final cover raster from a fixed layering
// recipe: background, taiji overlay, qimen chart, fog, circle highlights,
// player cutouts, date stamp, title lines and footer, flattened to JPEG.
//
// Only the background is mandatory. Every other layer fails soft: a missing
// or broken asset is reported as a skipped LayerResult and composition
// continues.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"github.com/qimenscout/covergen/internal/cutout"
	"github.com/qimenscout/covergen/internal/util"
)

// Canvas dimensions, 2:3 portrait.
const (
	DefaultWidth  = 1024
	DefaultHeight = 1536
)

// Geometry constants of the recipe, as fractions of canvas width/height.
const (
	taijiHeightFrac  = 0.35
	taijiBottomFrac  = 0.05
	taijiOpacity     = 0.3
	qimenWidthFrac   = 0.5
	qimenLiftFrac    = 0.09
	fogOpacity       = 0.5
	circleCellFrac   = 0.8
	circleGrowth     = 1.728
	circleOpacity    = 0.9
	playerHeightFrac = 0.36
	playerMarginFrac = 0.01
	featherRadius    = 5
	dateMarginFrac   = 0.02
	titleTopFrac     = 0.095
	footerWidthFrac  = 0.25
	footerBottomFrac = 0.01
	jpegQuality      = 95
)

// Inputs carries fully resolved local paths for one composition. Empty
// optional paths mean the layer is skipped, not substituted.
type Inputs struct {
	Background string // required
	Qimen      string
	Players    []string // 0..2, away slot first
	TitleLines []string // up to 2 rendered
	DateLabel  string

	// CircleCells are 1-9 cell numbers of the 3x3 grid over the placed
	// qimen chart. Duplicates redraw; out-of-range numbers warn and skip.
	CircleCells []int

	Taiji  string
	Fog    string
	Circle string
	Footer string

	FontPath  string // explicit title font, first in the fallback chain
	AssetsDir string // location of the bundled calligraphy font

	Matter cutout.Matter // optional background removal for players

	Width  int
	Height int
}

// LayerResult is the tagged outcome of one optional layer.
type LayerResult struct {
	Layer  string
	Placed bool
	Reason string
}

type composer struct {
	canvas  *image.NRGBA
	w, h    int
	results []LayerResult
}

func (c *composer) placed(layer string) {
	c.results = append(c.results, LayerResult{Layer: layer, Placed: true})
}

func (c *composer) skipped(layer, reason string) {
	log.Warn().Str("layer", layer).Str("reason", reason).Msg("layer skipped")
	c.results = append(c.results, LayerResult{Layer: layer, Reason: reason})
}

func (c *composer) overlay(img image.Image, x, y int, opacity float64) {
	c.canvas = imaging.Overlay(c.canvas, img, image.Pt(x, y), opacity)
}

func (c *composer) frac(of int, f float64) int {
	return int(float64(of) * f)
}

// Compose runs the full recipe and returns the RGBA canvas plus the
// per-layer outcomes. The only fatal error is a missing or undecodable
// background.
func Compose(in Inputs) (*image.NRGBA, []LayerResult, error) {
	w, h := in.Width, in.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	c := &composer{w: w, h: h}

	if err := c.background(in.Background); err != nil {
		return nil, nil, err
	}
	c.taiji(in.Taiji)
	box, ok := c.qimen(in.Qimen)
	if ok {
		c.fog(in.Fog, box)
		c.circles(in.Circle, in.CircleCells, box)
	}
	c.players(in.Players, in.Matter)
	c.date(in.DateLabel, in.FontPath, in.AssetsDir)
	c.titles(in.TitleLines, in.FontPath, in.AssetsDir)
	c.footer(in.Footer)

	return c.canvas, c.results, nil
}

// background center-crops the source to the canvas aspect and resizes it to
// fill the canvas exactly.
func (c *composer) background(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("loading background %s: %w", path, err)
	}

	sw, sh := img.Bounds().Dx(), img.Bounds().Dy()
	srcAspect := float64(sw) / float64(sh)
	dstAspect := float64(c.w) / float64(c.h)

	var crop image.Rectangle
	if srcAspect > dstAspect {
		cw := int(float64(sh) * dstAspect)
		left := (sw - cw) / 2
		crop = image.Rect(left, 0, left+cw, sh)
	} else {
		ch := int(float64(sw) / dstAspect)
		top := (sh - ch) / 2
		crop = image.Rect(0, top, sw, top+ch)
	}

	c.canvas = imaging.Resize(imaging.Crop(img, crop), c.w, c.h, imaging.Lanczos)
	return nil
}

// taiji sits low in the frame behind the qimen chart and the players.
func (c *composer) taiji(path string) {
	if path == "" {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		c.skipped("taiji", err.Error())
		return
	}
	th := c.frac(c.h, taijiHeightFrac)
	resized := imaging.Resize(img, 0, th, imaging.Lanczos)
	x := (c.w - resized.Bounds().Dx()) / 2
	y := c.h - th - c.frac(c.h, taijiBottomFrac)
	c.overlay(resized, x, y, taijiOpacity)
	c.placed("taiji")
}

// qimen keys out the white chart background, boosts contrast and sharpness,
// and centers the chart slightly above the vertical middle. The returned
// box is the placed bounding box all grid math derives from.
func (c *composer) qimen(path string) (image.Rectangle, bool) {
	if path == "" {
		return image.Rectangle{}, false
	}
	img, err := imaging.Open(path)
	if err != nil {
		c.skipped("qimen", err.Error())
		return image.Rectangle{}, false
	}

	plate := whiteKey(imaging.Clone(img))
	plate = adjustContrast(plate, 1.5)
	plate = adjustSharpness(plate, 2.0)

	side := c.frac(c.w, qimenWidthFrac)
	fitted := imaging.Fit(plate, side, side, imaging.Lanczos)
	qw, qh := fitted.Bounds().Dx(), fitted.Bounds().Dy()
	x := (c.w - qw) / 2
	y := (c.h-qh)/2 - c.frac(c.h, qimenLiftFrac)

	c.overlay(fitted, x, y, 1.0)
	c.placed("qimen")
	return image.Rect(x, y, x+qw, y+qh), true
}

// fog is stretched to exactly the qimen footprint, not aspect-preserved.
func (c *composer) fog(path string, box image.Rectangle) {
	if path == "" {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		c.skipped("fog", err.Error())
		return
	}
	stretched := imaging.Resize(img, box.Dx(), box.Dy(), imaging.Lanczos)
	c.overlay(stretched, box.Min.X, box.Min.Y, fogOpacity)
	c.placed("fog")
}

// circles overlays the highlight graphic on requested cells of the 3x3 grid
// over the placed qimen box. The second entry of the list is rotated 90
// degrees clockwise; duplicates simply redraw.
func (c *composer) circles(path string, cells []int, box image.Rectangle) {
	if path == "" || len(cells) == 0 {
		return
	}
	base, err := imaging.Open(path)
	if err != nil {
		c.skipped("circles", err.Error())
		return
	}

	cellW := box.Dx() / 3
	cellH := box.Dy() / 3
	size := cellW
	if cellH < size {
		size = cellH
	}
	ringSize := int(float64(int(float64(size)*circleCellFrac)) * circleGrowth)

	for idx, cell := range cells {
		if cell < 1 || cell > 9 {
			c.skipped(fmt.Sprintf("circle[%d]", cell), "cell number out of range 1-9")
			continue
		}
		ring := imaging.Resize(base, ringSize, ringSize, imaging.Lanczos)
		if idx == 1 {
			ring = imaging.Rotate(ring, -90, color.NRGBA{})
			if ring.Bounds().Dx() != ringSize || ring.Bounds().Dy() != ringSize {
				ring = imaging.Resize(ring, ringSize, ringSize, imaging.Lanczos)
			}
		}

		row := (cell - 1) / 3
		col := (cell - 1) % 3
		x := box.Min.X + col*cellW + (cellW-ringSize)/2
		y := box.Min.Y + row*cellH + (cellH-ringSize)/2
		c.overlay(ring, x, y, circleOpacity)
		c.placed(fmt.Sprintf("circle[%d]", cell))
	}
}

// players composites up to two bottom-aligned cutouts: slot 0 against the
// left edge, slot 1 against the right edge.
func (c *composer) players(paths []string, matter cutout.Matter) {
	ph := c.frac(c.h, playerHeightFrac)
	bottom := c.h - ph

	for idx, path := range paths {
		if idx >= 2 {
			break
		}
		layer := fmt.Sprintf("player[%d]", idx)
		img, err := imaging.Open(path)
		if err != nil {
			c.skipped(layer, err.Error())
			continue
		}

		cut := imaging.Clone(cutout.CutOrOriginal(matter, img))
		cut = cropToContent(cut)
		resized := imaging.Resize(cut, 0, ph, imaging.Lanczos)
		resized = featherAlpha(resized, featherRadius)

		pw := resized.Bounds().Dx()
		x := c.frac(c.w, playerMarginFrac)
		if idx == 1 {
			x = int(float64(c.w)*(1-playerMarginFrac)) - pw
		}
		c.overlay(resized, x, bottom, 1.0)
		c.placed(layer)
	}
}

func (c *composer) date(label, fontPath, assetsDir string) {
	if label == "" {
		return
	}
	img := renderDate(label, fontChain(fontPath, assetsDir))
	c.overlay(img, c.frac(c.w, dateMarginFrac), c.frac(c.h, dateMarginFrac), 1.0)
	c.placed("date")
}

// titles renders up to two lines, each independently centered, stacked at a
// fixed pitch from the title start line.
func (c *composer) titles(lines []string, fontPath, assetsDir string) {
	if len(lines) == 0 {
		return
	}
	face := resolveFace(fontChain(fontPath, assetsDir), titleFontSize)
	startY := c.frac(c.h, titleTopFrac)

	for i, line := range lines {
		if i >= 2 {
			break
		}
		img := renderLine(line, face)
		x := (c.w - img.Bounds().Dx()) / 2
		y := startY + i*(titleFontSize+titleLinePad)
		c.overlay(img, x, y, 1.0)
		c.placed(fmt.Sprintf("title[%d]", i))
	}
}

// footer is the topmost layer.
func (c *composer) footer(path string) {
	if path == "" {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		c.skipped("footer", err.Error())
		return
	}
	fw := c.frac(c.w, footerWidthFrac)
	resized := imaging.Resize(img, fw, 0, imaging.Lanczos)
	fh := resized.Bounds().Dy()
	x := (c.w - fw) / 2
	y := c.h - fh - c.frac(c.h, footerBottomFrac)
	c.overlay(resized, x, y, 1.0)
	c.placed("footer")
}

// Flatten composites the canvas over opaque white, discarding transparency.
func Flatten(canvas *image.NRGBA) *image.NRGBA {
	b := canvas.Bounds()
	white := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(white, canvas, image.Pt(0, 0), 1.0)
}

// EncodeJPEG writes the flattened cover at the fixed output quality.
func EncodeJPEG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
}

// WriteCover flattens the canvas and saves it as a JPEG at path, creating
// parent directories as needed.
func WriteCover(path string, canvas *image.NRGBA) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeJPEG(f, Flatten(canvas))
}
