package util

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetchBytes downloads a URL with a bounded timeout and returns the body.
// Non-2xx responses are reported as errors so callers can tell a transport
// failure apart from a bad upstream answer.
func FetchBytes(url string) ([]byte, error) {
	client := http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
