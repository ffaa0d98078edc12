package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Candidate mirrors the server's candidate wire shape.
type Candidate struct {
	ID        string    `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Prompt    string    `json:"prompt,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type GenerateResponse struct {
	SessionID     string      `json:"sessionId"`
	InputTextHash string      `json:"inputTextHash"`
	Candidates    []Candidate `json:"candidates"`
}

type ActionItem struct {
	CandidateID string  `json:"candidateId"`
	Action      string  `json:"action"`
	EditedFront *string `json:"editedFront,omitempty"`
	EditedBack  *string `json:"editedBack,omitempty"`
}

type ActionResult struct {
	Accepted []string `json:"accepted"`
	Edited   []string `json:"edited"`
	Rejected []string `json:"rejected"`
}

// API is the server surface the controller talks to.
type API interface {
	Generate(ctx context.Context, inputText, model string) (*GenerateResponse, error)
	SessionCandidates(ctx context.Context, sessionID string) ([]Candidate, error)
	OtherPending(ctx context.Context, excludeSessionID string) ([]Candidate, error)
	ProcessActions(ctx context.Context, sessionID string, actions []ActionItem) (*ActionResult, error)
}

// HTTPClient implements API over the JSON endpoints.
type HTTPClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, inputText, model string) (*GenerateResponse, error) {
	var resp GenerateResponse
	err := c.do(ctx, http.MethodPost, "/api/generations", map[string]string{
		"inputText": inputText,
		"model":     model,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SessionCandidates(ctx context.Context, sessionID string) ([]Candidate, error) {
	var cards []Candidate
	err := c.do(ctx, http.MethodGet, "/api/generations/"+url.PathEscape(sessionID)+"/candidates", nil, &cards)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *HTTPClient) OtherPending(ctx context.Context, excludeSessionID string) ([]Candidate, error) {
	path := "/api/candidates/pending/other"
	if excludeSessionID != "" {
		path += "?excludeSession=" + url.QueryEscape(excludeSessionID)
	}
	var cards []Candidate
	if err := c.do(ctx, http.MethodGet, path, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *HTTPClient) ProcessActions(ctx context.Context, sessionID string, actions []ActionItem) (*ActionResult, error) {
	var result ActionResult
	err := c.do(ctx, http.MethodPost, "/api/generations/"+url.PathEscape(sessionID)+"/actions", map[string]interface{}{
		"actions": actions,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
