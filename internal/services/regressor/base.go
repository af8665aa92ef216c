package regressor

import (
	"context"
	"fmt"
	"time"

	xhttp "CupoCast/pkg/http"
)

// HTTPServiceBase holds the client and base URL shared by remote model calls.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL.
func NewHTTPServiceBase(baseURL string, timeout time.Duration) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts payload to path under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("model http client not initialized")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Body:   payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// PostJSONWithRetry retries transient failures up to attempts times with linear backoff.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.PostJSON(ctx, path, payload, dest)
		if err == nil || !xhttp.IsTemporary(err) || i == attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
