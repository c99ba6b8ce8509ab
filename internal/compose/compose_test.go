package compose

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

// halfRing is opaque red on the left half, fully transparent on the right,
// so a 90 degree rotation is observable in the composed pixels.
func halfRing(size int) *image.NRGBA {
	img := imaging.New(size, size, color.NRGBA{})
	for y := 0; y < size; y++ {
		for x := 0; x < size/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestComposeBackgroundOnly(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(500, 500, color.NRGBA{R: 20, G: 40, B: 200, A: 255}))

	canvas, results, err := Compose(Inputs{Background: bg})
	require.NoError(t, err)
	assert.Empty(t, results)

	b := canvas.Bounds()
	assert.Equal(t, DefaultWidth, b.Dx())
	assert.Equal(t, DefaultHeight, b.Dy())

	flat := Flatten(canvas)
	for _, pt := range []image.Point{{0, 0}, {DefaultWidth - 1, 0}, {DefaultWidth / 2, DefaultHeight / 2}, {0, DefaultHeight - 1}, {DefaultWidth - 1, DefaultHeight - 1}} {
		assert.EqualValues(t, 255, flat.NRGBAAt(pt.X, pt.Y).A, "pixel %v not opaque", pt)
	}
}

func TestComposeMissingBackgroundIsFatal(t *testing.T) {
	canvas, results, err := Compose(Inputs{Background: filepath.Join(t.TempDir(), "nope.png")})
	require.Error(t, err)
	assert.Nil(t, canvas)
	assert.Nil(t, results)
}

func TestComposeBackgroundAspectCrop(t *testing.T) {
	dir := t.TempDir()
	// Wide source: left third red, middle green, right third blue. The
	// center crop must keep only the middle.
	src := imaging.New(3000, 1000, color.NRGBA{G: 255, A: 255})
	for y := 0; y < 1000; y++ {
		for x := 0; x < 1000; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			src.SetNRGBA(2000+x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	bg := savePNG(t, dir, "bg.png", src)

	canvas, _, err := Compose(Inputs{Background: bg})
	require.NoError(t, err)

	center := canvas.NRGBAAt(DefaultWidth/2, DefaultHeight/2)
	assert.Greater(t, int(center.G), 200)
	assert.Less(t, int(center.R), 50)
	assert.Less(t, int(center.B), 50)
}

func TestComposeCircleCells(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(1024, 1536, color.NRGBA{R: 200, G: 200, B: 200, A: 255}))
	qimen := savePNG(t, dir, "qimen.png", solid(512, 512, color.NRGBA{R: 50, G: 50, B: 50, A: 255}))
	circle := savePNG(t, dir, "circle.png", halfRing(100))

	canvas, results, err := Compose(Inputs{
		Background:  bg,
		Qimen:       qimen,
		Circle:      circle,
		CircleCells: []int{2, 4},
	})
	require.NoError(t, err)

	placed := map[string]bool{}
	for _, r := range results {
		placed[r.Layer] = r.Placed
	}
	assert.True(t, placed["qimen"])
	assert.True(t, placed["circle[2]"])
	assert.True(t, placed["circle[4]"])

	// Placed qimen box: 512x512 at (256, 374). Cells are 170px, ring 235px.
	const (
		cellW, cellH = 170, 170
		ringSize     = 235
		qx, qy       = 256, 374
	)

	isRed := func(c color.NRGBA) bool { return c.R > 180 && c.G < 80 && c.B < 80 }
	isGray := func(c color.NRGBA) bool {
		return c.R > 30 && c.R < 90 && int(c.G)-int(c.R) < 20 && int(c.R)-int(c.G) < 20
	}

	// Cell 2 (row 0, col 1): the first list entry is not rotated, so the
	// red half stays on the left.
	r2x := qx + cellW + (cellW-ringSize)/2
	r2y := qy + (cellH-ringSize)/2
	assert.True(t, isRed(canvas.NRGBAAt(r2x+ringSize/4, r2y+ringSize/2)), "cell 2 left half should be red")
	assert.True(t, isGray(canvas.NRGBAAt(r2x+3*ringSize/4, r2y+ringSize/2)), "cell 2 right half should show the chart")

	// Cell 4 (row 1, col 0): second list entry, rotated 90 degrees
	// clockwise, so the red half is now on top.
	r4x := qx + (cellW-ringSize)/2
	r4y := qy + cellH + (cellH-ringSize)/2
	assert.True(t, isRed(canvas.NRGBAAt(r4x+ringSize/2, r4y+ringSize/4)), "cell 4 top half should be red after rotation")
	assert.True(t, isGray(canvas.NRGBAAt(r4x+ringSize/2, r4y+3*ringSize/4)), "cell 4 bottom half should show the chart")
}

func TestComposeOutOfRangeCellSkipsWithWarning(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(100, 150, color.NRGBA{R: 10, G: 10, B: 10, A: 255}))
	qimen := savePNG(t, dir, "qimen.png", solid(300, 300, color.NRGBA{R: 60, G: 60, B: 60, A: 255}))
	circle := savePNG(t, dir, "circle.png", halfRing(50))

	_, results, err := Compose(Inputs{
		Background:  bg,
		Qimen:       qimen,
		Circle:      circle,
		CircleCells: []int{10, 5},
	})
	require.NoError(t, err)

	var skippedTen, placedFive bool
	for _, r := range results {
		if r.Layer == "circle[10]" && !r.Placed && r.Reason != "" {
			skippedTen = true
		}
		if r.Layer == "circle[5]" && r.Placed {
			placedFive = true
		}
	}
	assert.True(t, skippedTen, "out-of-range cell must be reported, not fatal")
	assert.True(t, placedFive, "valid cell must still be drawn")
}

func TestComposeDuplicateCellsRedraw(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(100, 150, color.NRGBA{A: 255}))
	qimen := savePNG(t, dir, "qimen.png", solid(300, 300, color.NRGBA{R: 60, G: 60, B: 60, A: 255}))
	circle := savePNG(t, dir, "circle.png", halfRing(50))

	_, results, err := Compose(Inputs{
		Background:  bg,
		Qimen:       qimen,
		Circle:      circle,
		CircleCells: []int{5, 5},
	})
	require.NoError(t, err)

	count := 0
	for _, r := range results {
		if r.Layer == "circle[5]" && r.Placed {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestComposeTitleLinesCenteredWithFixedPitch(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(1024, 1536, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))

	canvas, _, err := Compose(Inputs{
		Background: bg,
		TitleLines: []string{"AAA", "AAAAAAA"},
	})
	require.NoError(t, err)

	startYF := float64(DefaultHeight) * titleTopFrac
	startY := int(startYF)
	pitch := titleFontSize + titleLinePad

	band := func(y0, y1 int) (firstRow, minX, maxX int) {
		firstRow, minX, maxX = -1, DefaultWidth, -1
		for y := y0; y < y1; y++ {
			for x := 0; x < DefaultWidth; x++ {
				c := canvas.NRGBAAt(x, y)
				if c.R < 128 && c.A > 128 {
					if firstRow == -1 {
						firstRow = y
					}
					if x < minX {
						minX = x
					}
					if x > maxX {
						maxX = x
					}
				}
			}
		}
		return firstRow, minX, maxX
	}

	first1, min1, max1 := band(startY-2, startY+pitch)
	first2, min2, max2 := band(startY+pitch, startY+2*pitch)
	require.NotEqual(t, -1, first1, "first title line not rendered")
	require.NotEqual(t, -1, first2, "second title line not rendered")

	// Same glyphs, so the first inked row sits at the same offset within
	// each line: the gap between them is exactly the line pitch.
	assert.InDelta(t, pitch, first2-first1, 2)

	// Each line is centered independently despite different widths.
	assert.InDelta(t, DefaultWidth/2, (min1+max1)/2, 3)
	assert.InDelta(t, DefaultWidth/2, (min2+max2)/2, 3)
	assert.Greater(t, max2-min2, max1-min1)
}

func TestComposePlayersPlacement(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(1024, 1536, color.NRGBA{R: 10, G: 10, B: 10, A: 255}))
	player := savePNG(t, dir, "player.png", solid(200, 200, color.NRGBA{R: 255, B: 255, A: 255}))

	phF := float64(DefaultHeight) * playerHeightFrac
	ph := int(phF)
	top := DefaultHeight - ph

	isMagenta := func(c color.NRGBA) bool { return c.R > 180 && c.B > 180 && c.G < 80 }

	t.Run("away slot is left-aligned", func(t *testing.T) {
		canvas, results, err := Compose(Inputs{Background: bg, Players: []string{player}})
		require.NoError(t, err)
		require.Equal(t, []LayerResult{{Layer: "player[0]", Placed: true}}, results)

		leftF := float64(DefaultWidth) * playerMarginFrac
		left := int(leftF)
		assert.True(t, isMagenta(canvas.NRGBAAt(left+ph/2, top+ph/2)))
	})

	t.Run("missing away slot leaves only the home cutout, right-aligned", func(t *testing.T) {
		missing := filepath.Join(dir, "gone.png")
		canvas, results, err := Compose(Inputs{Background: bg, Players: []string{missing, player}})
		require.NoError(t, err)

		require.Len(t, results, 2)
		assert.False(t, results[0].Placed)
		assert.Equal(t, "player[0]", results[0].Layer)
		assert.True(t, results[1].Placed)
		assert.Equal(t, "player[1]", results[1].Layer)

		// Square cutout resized to ph x ph, right edge at 99% of W.
		rightF := float64(DefaultWidth) * (1 - playerMarginFrac)
		right := int(rightF)
		assert.True(t, isMagenta(canvas.NRGBAAt(right-ph/2, top+ph/2)), "home cutout should sit against the right edge")
		assert.False(t, isMagenta(canvas.NRGBAAt(ph/2, top+ph/2)), "left slot should stay empty")
	})
}

func TestComposeFooterTopmostAndPlacement(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(1024, 1536, color.NRGBA{R: 10, G: 10, B: 10, A: 255}))
	footer := savePNG(t, dir, "footer.png", solid(400, 100, color.NRGBA{G: 255, A: 255}))

	canvas, results, err := Compose(Inputs{Background: bg, Footer: footer})
	require.NoError(t, err)
	require.Equal(t, []LayerResult{{Layer: "footer", Placed: true}}, results)

	fwF := float64(DefaultWidth) * footerWidthFrac
	fw := int(fwF)
	fh := fw * 100 / 400
	fbF := float64(DefaultHeight) * footerBottomFrac
	y := DefaultHeight - fh - int(fbF)
	c := canvas.NRGBAAt(DefaultWidth/2, y+fh/2)
	assert.Greater(t, int(c.G), 200)
}

func TestComposeDateStampTopLeft(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(1024, 1536, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))

	canvas, _, err := Compose(Inputs{Background: bg, DateLabel: "2025-11-26"})
	require.NoError(t, err)

	x0F := float64(DefaultWidth) * dateMarginFrac
	x0 := int(x0F)
	y0F := float64(DefaultHeight) * dateMarginFrac
	y0 := int(y0F)
	found := false
	for y := y0; y < y0+dateFontSize*dateScale*3 && !found; y++ {
		for x := x0; x < DefaultWidth/2; x++ {
			if c := canvas.NRGBAAt(x, y); c.R < 128 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "date stamp not found near top-left corner")
}

func TestComposeFogRequiresQimen(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(100, 150, color.NRGBA{A: 255}))
	fog := savePNG(t, dir, "fog.png", solid(50, 50, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))

	_, results, err := Compose(Inputs{Background: bg, Fog: fog})
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "fog", r.Layer, "fog must not be placed without a qimen chart")
	}
}

func TestWriteCoverProducesJPEG(t *testing.T) {
	dir := t.TempDir()
	bg := savePNG(t, dir, "bg.png", solid(100, 150, color.NRGBA{R: 128, G: 64, B: 32, A: 255}))

	canvas, _, err := Compose(Inputs{Background: bg})
	require.NoError(t, err)

	out := filepath.Join(dir, "out", "cover.jpg")
	require.NoError(t, WriteCover(out, canvas))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}
