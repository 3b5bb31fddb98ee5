package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// Fetcher retrieves a remote locator's body and declared content type.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (Payload, error)
}

// HTTPFetcher fetches remote locators with net/http. Responses outside the
// 2xx range are terminal failures; nothing is retried.
type HTTPFetcher struct {
	Client *http.Client

	// Timeout bounds a whole fetch, body included. Zero means no bound.
	Timeout time.Duration
}

// NewHTTPFetcher returns a fetcher bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient, Timeout: timeout}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (Payload, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return Payload{}, &FetchError{Kind: KindRemote, Locator: locator, Err: err}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Payload{}, &FetchError{Kind: KindRemote, Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Payload{}, &FetchError{Kind: KindRemote, Locator: locator, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, &FetchError{Kind: KindRemote, Locator: locator, Err: fmt.Errorf("read body: %w", err)}
	}

	return withDefaultType(Payload{Data: data, MIMEType: mediaType(resp.Header.Get("Content-Type"))}), nil
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
