package ultramsg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://api.ultramsg.com"

// Client talks to one UltraMsg WhatsApp instance. Credentials are per-tenant,
// so construct one per business row; the struct is cheap and carries no state
// beyond the HTTP client.
type Client struct {
	InstanceId string
	Token      string

	BaseURL string
	HTTP    *http.Client
}

type sendResponse struct {
	Sent    string `json:"sent"`
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// StateResponse is the instance connection probe payload.
type StateResponse struct {
	State string `json:"state"`
}

func (c *Client) endpoint(path string) string {
	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return baseURL + "/" + c.InstanceId + path
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// SendChat posts a plain text message. Treat any 2xx as accepted.
func (c *Client) SendChat(ctx context.Context, to, body string) (int, error) {
	payload := map[string]string{
		"to":   to,
		"body": body,
		"type": "text",
	}
	status, raw, err := c.post(ctx, "/messages/chat", payload)
	if err != nil {
		return status, err
	}
	if status < 200 || status >= 300 {
		var out sendResponse
		_ = json.Unmarshal(raw, &out)
		if out.Message != "" {
			return status, errors.New(out.Message)
		}
		return status, errors.New("ultramsg send failed")
	}
	return status, nil
}

// SendImage posts an image message with an optional caption.
func (c *Client) SendImage(ctx context.Context, to, imageURL, caption string) (int, error) {
	payload := map[string]string{
		"to":      to,
		"image":   imageURL,
		"caption": caption,
	}
	status, raw, err := c.post(ctx, "/messages/image", payload)
	if err != nil {
		return status, err
	}
	if status < 200 || status >= 300 {
		var out sendResponse
		_ = json.Unmarshal(raw, &out)
		if out.Message != "" {
			return status, errors.New(out.Message)
		}
		return status, errors.New("ultramsg image send failed")
	}
	return status, nil
}

// ConnectionState probes the instance; "open" means the WhatsApp session is up.
func (c *Client) ConnectionState(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/instance/connectionState"), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New("ultramsg connection probe failed")
	}
	var out StateResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", err
	}
	return out.State, nil
}
