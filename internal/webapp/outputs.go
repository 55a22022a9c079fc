package webapp

import (
	"context"
	"io"
	"net/http"
)

// FetchOutputs downloads the outputs report on the current session and returns
// the raw body. A non-2xx status is logged and the body is returned anyway;
// an error page then fails to decode downstream.
func (c *Client) FetchOutputs(ctx context.Context) ([]byte, error) {
	outputsURL := c.OutputsURL()
	resp, err := c.do(ctx, http.MethodGet, outputsURL, "get outputs", nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Operation: "read outputs", URL: outputsURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "outputs returned non-success status",
			"status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"))
	}
	c.logger.DebugContext(ctx, "outputs downloaded", "bytes", len(body))
	return body, nil
}
