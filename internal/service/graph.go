package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// graphResponse covers the id-bearing success shapes of the Graph API.
// Photo posts answer with post_id, everything else with id.
type graphResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	Error  *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FbtraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// postGraphForm sends a form-encoded POST, which is what the Graph API
// prefers, and decodes the response envelope.
func postGraphForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	return decodeGraphResponse(resp)
}

func getGraphJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	var envelope graphResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return fmt.Errorf("graph api: %s (code=%d type=%s fbtrace=%s)",
			envelope.Error.Message, envelope.Error.Code, envelope.Error.Type, envelope.Error.FbtraceID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code from graph api: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}

func decodeGraphResponse(resp *http.Response) (*graphResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var result graphResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("graph api: %s (code=%d type=%s fbtrace=%s)",
			result.Error.Message, result.Error.Code, result.Error.Type, result.Error.FbtraceID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from graph api: %d", resp.StatusCode)
	}

	return &result, nil
}
