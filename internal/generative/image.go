package generative

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultMaxImageBytes = 10 * 1024 * 1024

// fetchImage downloads an image. Errors never include the URL, which may
// carry a bot token.
func fetchImage(ctx context.Context, client *http.Client, rawURL string, maxBytes int64) (data []byte, mimeType string, err error) {
	if rawURL == "" {
		return nil, "", fmt.Errorf("empty image url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.New("failed to create image request")
	}
	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image")
	}

	mimeType = http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("unsupported content type %q", mimeType)
	}
	return data, mimeType, nil
}

// dataURL encodes the image for endpoints that accept inline images.
func (img *ImageRef) dataURL() string {
	if len(img.Data) == 0 {
		return img.URL
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
