package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"geopunch/internal/punch"
)

const defaultTimeout = 30 * time.Second

// Client talks to the attendance API (cmd/api) over HTTP. Server error
// messages are surfaced verbatim so the punch screen can show them.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient ...*http.Client) *Client {
	hc := &http.Client{Timeout: defaultTimeout}
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

type envelope struct {
	Ok   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type statusData struct {
	Status string `json:"status"`
}

func (c *Client) CurrentStatus(ctx context.Context) (punch.Status, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/attendances/status", nil)
	if err != nil {
		return "", err
	}
	var data statusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return punch.Status(data.Status), nil
}

func (c *Client) PunchIn(ctx context.Context, payload punch.Payload) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/attendances/punch-in", payload)
	return err
}

func (c *Client) PunchOut(ctx context.Context, payload punch.Payload) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/attendances/punch-out", payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("attendance api: status %d: %w", resp.StatusCode, err)
	}
	if !env.Ok {
		if env.Error != nil && env.Error.Message != "" {
			return nil, fmt.Errorf("%s", env.Error.Message)
		}
		return nil, fmt.Errorf("attendance api: status %d", resp.StatusCode)
	}
	return &env, nil
}
