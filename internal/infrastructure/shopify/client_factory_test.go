package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/rs/zerolog"
)

type fakeAuthenticator struct {
	client ports.AdminClient
	err    error
	req    *http.Request
}

func (f *fakeAuthenticator) Authenticate(r *http.Request) (ports.AdminClient, error) {
	f.req = r
	return f.client, f.err
}

type stubClient struct {
	resp *domain.GraphQLResponse
	err  error
}

func (s *stubClient) GraphQL(ctx context.Context, query string, variables map[string]any) (*domain.GraphQLResponse, error) {
	return s.resp, s.err
}

type observation struct {
	operation, client, outcome string
}

type fakeObserver struct {
	seen []observation
}

func (f *fakeObserver) ObserveAdminRequest(operation, client, outcome string, elapsed time.Duration) {
	f.seen = append(f.seen, observation{operation, client, outcome})
}

func testSession() *domain.Session {
	return &domain.Session{ID: "offline_test-shop.myshopify.com", Shop: "test-shop.myshopify.com", AccessToken: "shpat_1"}
}

func TestClientFactory_PrimaryPath(t *testing.T) {
	auth := &fakeAuthenticator{client: &stubClient{resp: &domain.GraphQLResponse{}}}
	obs := &fakeObserver{}
	f := NewClientFactory(auth, "2024-10", nil, obs, zerolog.Nop())

	orig := httptest.NewRequest(http.MethodPost, "/apps/proxy", nil)
	c, err := f.ForSession(orig, "test-shop.myshopify.com", testSession())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.GraphQL(context.Background(), "mutation CreateCompany { x }", nil); err != nil {
		t.Fatal(err)
	}

	if got := auth.req.Header.Get("Authorization"); got != "Bearer shpat_1" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if got := auth.req.Header.Get(ShopDomainHeader); got != "test-shop.myshopify.com" {
		t.Fatalf("unexpected shop header %q", got)
	}
	if orig.Header.Get("Authorization") != "" {
		t.Fatal("original request must not be modified")
	}
	if len(obs.seen) != 1 || obs.seen[0] != (observation{"CreateCompany", ClientGoShopify, "ok"}) {
		t.Fatalf("unexpected observations %+v", obs.seen)
	}
}

func TestClientFactory_FallsBackToRawClient(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(AccessTokenHeader)
		_, _ = w.Write([]byte(`{"data":{},"errors":[{"message":"boom"}]}`))
	}))
	defer srv.Close()

	hc, rt := newRewriteClient(t, srv)
	obs := &fakeObserver{}
	f := NewClientFactory(&fakeAuthenticator{err: errors.New("no credentials")}, "2024-10", hc, obs, zerolog.Nop())

	session := testSession()
	session.Shop = "test-shop"
	c, err := f.ForSession(httptest.NewRequest(http.MethodPost, "/apps/proxy", nil), "other-shop.myshopify.com", session)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.GraphQL(context.Background(), "query GetPages { pages { nodes { id } } }", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("expected graphql errors to be passed through, got %+v", resp.Errors)
	}
	if gotToken != "shpat_1" {
		t.Fatalf("unexpected token %q", gotToken)
	}
	if rt.hosts[0] != "test-shop.myshopify.com" {
		t.Fatalf("unexpected host %s", rt.hosts[0])
	}
	if len(obs.seen) != 1 || obs.seen[0] != (observation{"GetPages", ClientRaw, "graphql_error"}) {
		t.Fatalf("unexpected observations %+v", obs.seen)
	}
}

func TestClientFactory_NoCredentials(t *testing.T) {
	tests := []struct {
		Title   string
		Session *domain.Session
	}{
		{Title: "nil session"},
		{Title: "empty token", Session: &domain.Session{Shop: "test-shop.myshopify.com", AccessToken: "  "}},
		{Title: "empty shop", Session: &domain.Session{AccessToken: "shpat_1"}},
	}

	f := NewClientFactory(nil, "2024-10", nil, nil, zerolog.Nop())
	for _, test := range tests {
		t.Run(test.Title, func(t *testing.T) {
			_, err := f.ForSession(httptest.NewRequest(http.MethodGet, "/", nil), "", test.Session)
			var authErr *domain.AdminAuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AdminAuthError, got %v", err)
			}
		})
	}
}

func TestClientFactory_UsesResolvedShop(t *testing.T) {
	tests := []struct {
		Title       string
		SessionShop string
		Resolved    string
		Expected    string
	}{
		{Title: "session without shop", SessionShop: "", Resolved: "acme", Expected: "acme.myshopify.com"},
		{Title: "blank session shop", SessionShop: "  ", Resolved: "acme.myshopify.com", Expected: "acme.myshopify.com"},
		{Title: "session shop wins", SessionShop: "test-shop.myshopify.com", Resolved: "acme.myshopify.com", Expected: "test-shop.myshopify.com"},
	}

	for _, tt := range tests {
		t.Run(tt.Title, func(t *testing.T) {
			auth := &fakeAuthenticator{client: &stubClient{resp: &domain.GraphQLResponse{}}}
			f := NewClientFactory(auth, "2024-10", nil, nil, zerolog.Nop())

			session := &domain.Session{ID: "offline_acme.myshopify.com", Shop: tt.SessionShop, AccessToken: "shpat_1"}
			if _, err := f.ForSession(httptest.NewRequest(http.MethodPost, "/apps/proxy", nil), tt.Resolved, session); err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got := auth.req.Header.Get(ShopDomainHeader); got != tt.Expected {
				t.Fatalf("expected shop %q, got %q", tt.Expected, got)
			}
		})
	}
}

func TestInstrumentedClient_TransportError(t *testing.T) {
	obs := &fakeObserver{}
	f := NewClientFactory(&fakeAuthenticator{client: &stubClient{err: errors.New("connection reset")}}, "2024-10", nil, obs, zerolog.Nop())
	c, err := f.ForSession(httptest.NewRequest(http.MethodGet, "/", nil), "test-shop.myshopify.com", testSession())
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.GraphQL(context.Background(), "mutation CreateCustomer { x }", nil)
	if err == nil || err.Error() != "CreateCustomer: connection reset" {
		t.Fatalf("unexpected error %v", err)
	}
	if obs.seen[0].outcome != "error" {
		t.Fatalf("unexpected outcome %s", obs.seen[0].outcome)
	}
}
