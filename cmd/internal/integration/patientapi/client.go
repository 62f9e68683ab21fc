package patientapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"mibo/cmd/internal/utils/apierror"
)

// TokenSource hands out the bearer token for the next request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote patient API. It never retries; callers
// decide whether to ask again.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apierror.NewNetworkError(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("patient api %s %s failed: %v", method, path, err)
		return apierror.NewNetworkError(0, "", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("patient api %s %s returned %d: %s", method, path, resp.StatusCode, env.Message)
		return apierror.NewNetworkError(resp.StatusCode, env.Message, nil)
	}
	if decodeErr != nil && decodeErr != io.EOF {
		return apierror.NewNetworkError(resp.StatusCode, "Malformed response from patient API", decodeErr)
	}
	if !env.Success {
		log.Warnf("patient api %s %s unsuccessful: %s", method, path, env.Message)
		return apierror.NewNetworkError(resp.StatusCode, env.Message, nil)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apierror.NewNetworkError(resp.StatusCode, "Malformed response from patient API", err)
	}
	return nil
}
