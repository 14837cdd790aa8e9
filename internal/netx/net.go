// Package netx contains small HTTP helpers for talking to the S3-compatible
// staging endpoint through presigned URLs.
package netx

import (
	"fmt"
	"io"
	"net/http"
)

// DownloadFromPresignedURL fetches the object behind a presigned GET URL.
func DownloadFromPresignedURL(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	return io.ReadAll(resp.Body)
}
