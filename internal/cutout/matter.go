// Package cutout removes image backgrounds by delegating to a
// rembg-compatible HTTP endpoint. Matting is best-effort: any failure
// hands back the untouched source so the cover still gets a player layer.
package cutout

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Matter turns an image into an RGBA cutout with the background transparent.
type Matter interface {
	Cut(img image.Image) (image.Image, error)
}

// HTTPMatter posts PNG bytes to a matting service (rembg's server mode)
// and decodes the returned alpha-carrying image.
type HTTPMatter struct {
	URL    string
	Client *http.Client
}

func NewHTTPMatter(url string) *HTTPMatter {
	return &HTTPMatter{
		URL:    url,
		Client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (m *HTTPMatter) Cut(img image.Image) (image.Image, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding matting input: %w", err)
	}

	resp, err := m.Client.Post(m.URL, "image/png", &buf)
	if err != nil {
		return nil, fmt.Errorf("calling matting service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("matting service status %d: %s", resp.StatusCode, body)
	}

	out, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding matting output: %w", err)
	}
	return out, nil
}

// CutOrOriginal applies m to img, falling back to img itself when m is nil
// or the matting pass fails.
func CutOrOriginal(m Matter, img image.Image) image.Image {
	if m == nil {
		return img
	}
	out, err := m.Cut(img)
	if err != nil {
		log.Warn().Err(err).Msg("background removal failed, using original image")
		return img
	}
	return out
}
