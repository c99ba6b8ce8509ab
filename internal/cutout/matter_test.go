package cutout

import (
	"bytes"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMatterCut(t *testing.T) {
	cutPNG := func() []byte {
		img := imaging.New(4, 4, color.NRGBA{R: 255, A: 128})
		var buf bytes.Buffer
		require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
		return buf.Bytes()
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(cutPNG)
	}))
	defer srv.Close()

	m := NewHTTPMatter(srv.URL)
	out, err := m.Cut(imaging.New(4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))
	require.NoError(t, err)
	assert.Equal(t, 4, out.Bounds().Dx())
}

func TestHTTPMatterErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPMatter(srv.URL).Cut(imaging.New(2, 2, color.NRGBA{A: 255}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCutOrOriginalFallsBack(t *testing.T) {
	src := imaging.New(2, 2, color.NRGBA{R: 9, A: 255})

	t.Run("nil matter", func(t *testing.T) {
		assert.Equal(t, src, CutOrOriginal(nil, src))
	})

	t.Run("failing matter", func(t *testing.T) {
		m := NewHTTPMatter("http://127.0.0.1:1") // nothing listens here
		assert.Equal(t, src, CutOrOriginal(m, src))
	})
}
