package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"wholesale-registration-app/internal/domain"
)

type call struct {
	Query     string
	Variables map[string]any
}

// fakeAdmin answers GraphQL documents with canned JSON envelopes
type fakeAdmin struct {
	responses map[string]string
	errs      map[string]error
	calls     []call
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeAdmin) on(query, envelope string) *fakeAdmin {
	f.responses[query] = envelope
	return f
}

func (f *fakeAdmin) GraphQL(ctx context.Context, query string, variables map[string]any) (*domain.GraphQLResponse, error) {
	f.calls = append(f.calls, call{Query: query, Variables: variables})
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	envelope, ok := f.responses[query]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	var resp domain.GraphQLResponse
	if err := json.Unmarshal([]byte(envelope), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (f *fakeAdmin) count(query string) int {
	n := 0
	for _, c := range f.calls {
		if c.Query == query {
			n++
		}
	}
	return n
}

func (f *fakeAdmin) last(query string) *call {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Query == query {
			return &f.calls[i]
		}
	}
	return nil
}

type fakeRecorder struct {
	registrations []string
	provisioning  []string
}

func (f *fakeRecorder) RegistrationOutcome(outcome string) {
	f.registrations = append(f.registrations, outcome)
}

func (f *fakeRecorder) ProvisioningOutcome(outcome string) {
	f.provisioning = append(f.provisioning, outcome)
}

type fakeStorage struct {
	sessions  map[string]*domain.Session
	loaded    []string
	listed    []string
	loadErr   error
	listErr   error
	listCount int
}

func (f *fakeStorage) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	f.loaded = append(f.loaded, id)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.sessions[id], nil
}

func (f *fakeStorage) FindSessionsByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	f.listed = append(f.listed, shop)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return make([]*domain.Session, f.listCount), nil
}

func (f *fakeStorage) StoreSession(ctx context.Context, session *domain.Session) error {
	return errors.New("read only")
}

type fakeVerifier struct {
	shop string
	err  error
}

func (f *fakeVerifier) VerifyProxyRequest(u *url.URL) (string, error) {
	return f.shop, f.err
}

func (f *fakeVerifier) VerifyAdminRequest(u *url.URL) (string, error) {
	return f.shop, f.err
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released []string
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[key] {
		return nil, false, nil
	}
	f.held[key] = true
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
		f.released = append(f.released, key)
		return nil
	}, true, nil
}
