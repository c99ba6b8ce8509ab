package compose

import (
	"image"

	"github.com/disintegration/imaging"
)

// whiteThreshold marks a pixel as background when R, G and B all exceed it.
const whiteThreshold = 240

// whiteKey turns near-white pixels fully transparent so a scanned chart
// blends with the canvas instead of sitting in a white box.
func whiteKey(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] > whiteThreshold && out.Pix[i+1] > whiteThreshold && out.Pix[i+2] > whiteThreshold {
			out.Pix[i] = 0xff
			out.Pix[i+1] = 0xff
			out.Pix[i+2] = 0xff
			out.Pix[i+3] = 0
		}
	}
	return out
}

// adjustContrast scales contrast around the mean gray luminance: factor 1.0
// is a no-op, higher pushes channels away from the mean. Alpha is untouched.
func adjustContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	out := imaging.Clone(img)
	mean := meanLuminance(out)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := mean + factor*(float64(out.Pix[i+c])-mean)
			out.Pix[i+c] = clamp8(v)
		}
	}
	return out
}

// adjustSharpness blends the image away from a 3x3-smoothed copy of itself:
// factor 1.0 is a no-op, 2.0 doubles the distance from the smoothed image.
// Alpha is untouched.
func adjustSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	smooth := imaging.Convolve3x3(
		img,
		[9]float64{
			1, 1, 1,
			1, 5, 1,
			1, 1, 1,
		},
		&imaging.ConvolveOptions{Normalize: true},
	)
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(smooth.Pix[i+c]) + factor*(float64(img.Pix[i+c])-float64(smooth.Pix[i+c]))
			out.Pix[i+c] = clamp8(v)
		}
	}
	return out
}

// cropToContent crops to the bounding box of non-transparent pixels.
// A fully transparent image is returned unchanged.
func cropToContent(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := (y - b.Min.Y) * img.Stride
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[row+(x-b.Min.X)*4+3] > 0 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return img
	}
	return imaging.Crop(img, image.Rect(minX, minY, maxX+1, maxY+1))
}

// featherAlpha gaussian-blurs only the alpha channel, softening cutout
// edges without smearing the colors.
func featherAlpha(img *image.NRGBA, radius float64) *image.NRGBA {
	b := img.Bounds()
	mask := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := 0; i < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		mask.Pix[i] = a
		mask.Pix[i+1] = a
		mask.Pix[i+2] = a
		mask.Pix[i+3] = 0xff
	}
	blurred := imaging.Blur(mask, radius)

	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+3] = blurred.Pix[i]
	}
	return out
}

func meanLuminance(img *image.NRGBA) float64 {
	var sum float64
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
