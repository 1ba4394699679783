package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"wholesale-registration-app/internal/domain"
)

// AccessTokenHeader authenticates direct Admin API calls
const AccessTokenHeader = "X-Shopify-Access-Token"

// RawClient posts GraphQL documents straight to the Admin API endpoint of a shop
type RawClient struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewRawClient creates a client for https://<shop>/admin/api/<version>/graphql.json
func NewRawClient(shop, accessToken, apiVersion string, httpClient *http.Client) *RawClient {
	return newRawClient(fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, apiVersion), accessToken, httpClient)
}

func newRawClient(endpoint, accessToken string, httpClient *http.Client) *RawClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RawClient{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  httpClient,
	}
}

// StatusError is returned when the Admin API answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("admin api returned status %d: %s", e.Code, e.Body)
}

type rawRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type rawResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// GraphQL executes a document. GraphQL-level errors are returned in the response.
func (c *RawClient) GraphQL(ctx context.Context, query string, variables map[string]any) (*domain.GraphQLResponse, error) {
	body, err := json.Marshal(rawRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(AccessTokenHeader, c.accessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{Code: res.StatusCode, Body: truncate(payload, 512)}
	}

	var raw rawResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	errs, err := decodeErrors(raw.Errors)
	if err != nil {
		return nil, err
	}
	return &domain.GraphQLResponse{Data: raw.Data, Errors: errs}, nil
}

// decodeErrors accepts both the list form and the plain string form Shopify
// uses for authentication failures.
func decodeErrors(raw json.RawMessage) ([]domain.GraphQLError, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []domain.GraphQLError
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return []domain.GraphQLError{{Message: msg}}, nil
	}
	return nil, fmt.Errorf("failed to decode graphql errors: %s", truncate(raw, 256))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
