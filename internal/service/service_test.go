package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"places-api/internal/core/auth"
	"places-api/internal/domain"
)

func newJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "places-api", TTL: time.Hour}
}

type fakeGeocoder struct {
	loc domain.Location
	err error
}

func (f fakeGeocoder) Lookup(context.Context, string) (domain.Location, error) {
	return f.loc, f.err
}

type recordingAssets struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (r *recordingAssets) Delete(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, ref)
	return r.err
}

// failingStore 事务内追加/移除用户地点时失败，用于验证回滚
type failingStore struct {
	domain.Store
	err error
}

func (f failingStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return f.Store.WithinTx(ctx, func(tx domain.Store) error {
		return fn(failingTx{Store: tx, err: f.err})
	})
}

type failingTx struct {
	domain.Store
	err error
}

func (f failingTx) Users() domain.UserRepository {
	return failingUsers{UserRepository: f.Store.Users(), err: f.err}
}

type failingUsers struct {
	domain.UserRepository
	err error
}

func (f failingUsers) AppendPlace(context.Context, string, string) error { return f.err }
func (f failingUsers) RemovePlace(context.Context, string, string) error { return f.err }

func mustSignup(t *testing.T, s *UserService, email string) *AuthResult {
	t.Helper()
	res, err := s.Signup(context.Background(), SignupInput{Name: "Max", Email: email, Password: "secret1", Image: "uploads/images/a.png"})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return res
}

func assertKind(t *testing.T, err error, want domain.Kind) {
	t.Helper()
	if !domain.IsKind(err, want) {
		t.Fatalf("err = %v, want kind %s", err, want)
	}
}
