package common

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Client calls the catalogflow API as one actor.
type Client struct {
	BaseURL string
	ActorID int64
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL string, actorID int64, apiKey string) *Client {
	return &Client{BaseURL: baseURL, ActorID: actorID, APIKey: apiKey, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// Do sends body as JSON when it is not nil and returns the status and raw
// response body.
func (c *Client) Do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, c.BaseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", strconv.FormatInt(c.ActorID, 10))
	req.Header.Set("X-API-Key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// DoJSON is Do followed by decoding the response into out. It fails the test
// unless the status matches want.
func (c *Client) DoJSON(t *testing.T, method, path string, body any, want int, out any) {
	t.Helper()
	status, raw := c.Do(t, method, path, body)
	require.Equal(t, want, status, string(raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
}
