package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// rewriteTransport sends every request to a test server regardless of its host
type rewriteTransport struct {
	target *url.URL
	hosts  []string
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.hosts = append(rt.hosts, req.URL.Host)
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newRewriteClient(t *testing.T, srv *httptest.Server) (*http.Client, *rewriteTransport) {
	t.Helper()
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	rt := &rewriteTransport{target: target}
	return &http.Client{Transport: rt}, rt
}

func TestRawClient_GraphQL(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get(AccessTokenHeader)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"shop":{"name":"Test"}}}`))
	}))
	defer srv.Close()

	hc, rt := newRewriteClient(t, srv)
	c := NewRawClient("test-shop.myshopify.com", "shpat_123", "2024-10", hc)

	resp, err := c.GraphQL(context.Background(), "query ShopInfo { shop { name } }", map[string]any{"first": 1})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/admin/api/2024-10/graphql.json" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if rt.hosts[0] != "test-shop.myshopify.com" {
		t.Fatalf("unexpected host %s", rt.hosts[0])
	}
	if gotToken != "shpat_123" {
		t.Fatalf("unexpected access token %q", gotToken)
	}
	if gotBody["query"] != "query ShopInfo { shop { name } }" {
		t.Fatalf("unexpected query %v", gotBody["query"])
	}
	if vars, _ := gotBody["variables"].(map[string]any); vars["first"] != float64(1) {
		t.Fatalf("unexpected variables %v", gotBody["variables"])
	}

	var data struct {
		Shop struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := resp.DecodeData(&data); err != nil {
		t.Fatal(err)
	}
	if data.Shop.Name != "Test" {
		t.Fatalf("unexpected shop name %q", data.Shop.Name)
	}
}

func TestRawClient_Errors(t *testing.T) {
	tests := []struct {
		Title          string
		Status         int
		Body           string
		ExpectedErrors []string
		ExpectedStatus int
		ExpectedError  string
	}{
		{
			Title:          "list of errors",
			Status:         http.StatusOK,
			Body:           `{"errors":[{"message":"Field 'x' doesn't exist"},{"message":"second"}]}`,
			ExpectedErrors: []string{"Field 'x' doesn't exist", "second"},
		},
		{
			Title:          "string error",
			Status:         http.StatusOK,
			Body:           `{"errors":"[API] Invalid API key or access token"}`,
			ExpectedErrors: []string{"[API] Invalid API key or access token"},
		},
		{
			Title:          "unauthorized",
			Status:         http.StatusUnauthorized,
			Body:           `{"errors":"[API] Invalid API key or access token"}`,
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedError:  "admin api returned status 401",
		},
		{
			Title:         "malformed body",
			Status:        http.StatusOK,
			Body:          `not json`,
			ExpectedError: "failed to decode response",
		},
		{
			Title:         "malformed errors",
			Status:        http.StatusOK,
			Body:          `{"errors":42}`,
			ExpectedError: "failed to decode graphql errors",
		},
	}

	for _, test := range tests {
		t.Run(test.Title, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.Status)
				_, _ = w.Write([]byte(test.Body))
			}))
			defer srv.Close()

			c := newRawClient(srv.URL, "token", srv.Client())
			resp, err := c.GraphQL(context.Background(), "query Q { shop { name } }", nil)

			if test.ExpectedError != "" {
				if err == nil || !strings.Contains(err.Error(), test.ExpectedError) {
					t.Fatalf("expected error containing %q, got %v", test.ExpectedError, err)
				}
				if test.ExpectedStatus != 0 {
					var statusErr *StatusError
					if !errors.As(err, &statusErr) || statusErr.Code != test.ExpectedStatus {
						t.Fatalf("expected status error %d, got %v", test.ExpectedStatus, err)
					}
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Errors) != len(test.ExpectedErrors) {
				t.Fatalf("expected %d errors, got %d", len(test.ExpectedErrors), len(resp.Errors))
			}
			for i, msg := range test.ExpectedErrors {
				if resp.Errors[i].Message != msg {
					t.Fatalf("error %d: expected %q, got %q", i, msg, resp.Errors[i].Message)
				}
			}
		})
	}
}
