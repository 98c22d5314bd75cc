package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-retryablehttp"
)

const maxResponseBytes = 4 << 20

// doJSON sends body (if any) as JSON and decodes a 2xx response into out.
// Non-2xx responses come back as *RenderError carrying the status code.
func doJSON(ctx context.Context, client *retryablehttp.Client, provider, method, url string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &RenderError{Provider: provider, Reason: "encode request", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &RenderError{Provider: provider, Reason: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &RenderError{Provider: provider, Reason: fmt.Sprintf("%s %s", method, req.URL.Path), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RenderError{Provider: provider, Reason: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RenderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Reason:     truncate(string(respBody), 300),
		}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RenderError{Provider: provider, Reason: "decode response", Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// statusIs reports whether err is a RenderError with the given HTTP status.
func statusIs(err error, code int) bool {
	var re *RenderError
	return errors.As(err, &re) && re.StatusCode == code
}
