package globe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const maxTextureBytes = 16 << 20

// IsTextureURL reports whether name should be fetched rather than read from disk.
func IsTextureURL(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.HasPrefix(n, "http://") || strings.HasPrefix(n, "https://")
}

// OpenTexture loads a texture from an http(s) URL or a local file.
func OpenTexture(ctx context.Context, name string, timeout time.Duration) (*Texture, error) {
	if !IsTextureURL(name) {
		return LoadTexture(name)
	}
	return FetchTexture(ctx, &http.Client{Timeout: timeout}, name)
}

// FetchTexture downloads and parses a texture, such as hopserve's /texture.
func FetchTexture(ctx context.Context, client *http.Client, url string) (*Texture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextureLoad, err)
	}
	req.Header.Set("Accept", "text/plain")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextureLoad, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned %s", ErrTextureLoad, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTextureBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextureLoad, err)
	}
	if len(data) > maxTextureBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTextureLoad, url, maxTextureBytes)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid utf-8", ErrTextureLoad, url)
	}
	t, err := ParseTexture(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return t, nil
}
