package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"places-api/internal/core/database"
	"places-api/internal/domain"
)

// newGormStore 每个测试一份独立的 sqlite 文件库，走与生产相同的 database.NewGorm
func newGormStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "places.db"),
		LogLevel: "silent",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewStore(db)
}

func TestGormStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	seedUser(t, s, "u1", "a@x.com")

	err := s.Users().Create(ctx, &domain.User{ID: "u2", Name: "n", Email: "a@x.com"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	users, err := s.Users().List(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("List = %d users, %v", len(users), err)
	}
}

func TestGormStoreFindMissingReturnsNil(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	if u, err := s.Users().FindByEmail(ctx, "nobody@x.com"); u != nil || err != nil {
		t.Fatalf("FindByEmail = %v, %v", u, err)
	}
	if p, err := s.Places().FindByID(ctx, "nope"); p != nil || err != nil {
		t.Fatalf("FindByID = %v, %v", p, err)
	}
}

func TestGormStoreTxCommit(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	seedUser(t, s, "u1", "a@x.com")

	err := s.WithinTx(ctx, func(tx domain.Store) error {
		p := &domain.Place{ID: "p1", Title: "Empire", Creator: "u1", Location: domain.Location{Lat: 40.7, Lng: -73.9}}
		if err := tx.Places().Create(ctx, p); err != nil {
			return err
		}
		return tx.Users().AppendPlace(ctx, "u1", "p1")
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	u, err := s.Users().FindByID(ctx, "u1")
	if err != nil || u == nil {
		t.Fatalf("FindByID = %v, %v", u, err)
	}
	if len(u.Places) != 1 || u.Places[0] != "p1" {
		t.Fatalf("places = %v", u.Places)
	}
	p, err := s.Places().FindByID(ctx, "p1")
	if err != nil || p == nil || p.Location.Lat != 40.7 || p.Creator != "u1" {
		t.Fatalf("place = %+v, %v", p, err)
	}
}

func TestGormStoreTxRollbackWhenLinkFails(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	seedUser(t, s, "u1", "a@x.com")
	if err := s.Users().AppendPlace(ctx, "u1", "p0"); err != nil {
		t.Fatal(err)
	}

	err := s.WithinTx(ctx, func(tx domain.Store) error {
		if err := tx.Places().Create(ctx, &domain.Place{ID: "p1", Creator: "u1"}); err != nil {
			return err
		}
		// 违反 (user_id, place_id) 唯一索引
		return tx.Users().AppendPlace(ctx, "u1", "p0")
	})
	if err == nil {
		t.Fatal("expected link failure")
	}

	if p, _ := s.Places().FindByID(ctx, "p1"); p != nil {
		t.Fatal("place must be rolled back")
	}
	u, _ := s.Users().FindByID(ctx, "u1")
	if len(u.Places) != 1 || u.Places[0] != "p0" {
		t.Fatalf("user places = %v", u.Places)
	}
}

func TestGormStoreTxRollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	seedUser(t, s, "u1", "a@x.com")

	func() {
		defer func() { _ = recover() }()
		_ = s.WithinTx(ctx, func(tx domain.Store) error {
			_ = tx.Places().Create(ctx, &domain.Place{ID: "p1", Creator: "u1"})
			panic("boom")
		})
	}()

	if p, err := s.Places().FindByID(ctx, "p1"); p != nil || err != nil {
		t.Fatalf("place after panic = %v, %v", p, err)
	}
}

func TestGormStorePlaceListOrder(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	seedUser(t, s, "u1", "a@x.com")
	seedUser(t, s, "u2", "b@x.com")
	for _, id := range []string{"p3", "p1", "p2"} {
		if err := s.Users().AppendPlace(ctx, "u1", id); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Users().RemovePlace(ctx, "u1", "p1"); err != nil {
		t.Fatal(err)
	}

	u, _ := s.Users().FindByID(ctx, "u1")
	if len(u.Places) != 2 || u.Places[0] != "p3" || u.Places[1] != "p2" {
		t.Fatalf("places = %v", u.Places)
	}

	users, err := s.Users().List(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("List = %v, %v", users, err)
	}
	byID := map[string]domain.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	if got := byID["u1"].Places; len(got) != 2 || got[0] != "p3" || got[1] != "p2" {
		t.Fatalf("listed places = %v", got)
	}
	if got := byID["u2"].Places; got == nil || len(got) != 0 {
		t.Fatalf("user without places = %#v", got)
	}
}

func TestGormStoreUpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	if err := s.Places().Create(ctx, &domain.Place{ID: "p1", Title: "old", Description: "old text", Creator: "u1"}); err != nil {
		t.Fatal(err)
	}

	if err := s.Places().UpdateDetails(ctx, "nope", "t", "d"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateDetails missing = %v", err)
	}
	if err := s.Places().Delete(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete missing = %v", err)
	}

	if err := s.Places().UpdateDetails(ctx, "p1", "new", "new text"); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	p, _ := s.Places().FindByID(ctx, "p1")
	if p.Title != "new" || p.Description != "new text" {
		t.Fatalf("place = %+v", p)
	}

	if err := s.Places().Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Places().Delete(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete = %v", err)
	}
}

func TestGormStoreFindByCreator(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	for _, p := range []domain.Place{{ID: "p1", Creator: "u1"}, {ID: "p2", Creator: "u2"}, {ID: "p3", Creator: "u1"}} {
		if err := s.Places().Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}

	ps, err := s.Places().FindByCreator(ctx, "u1")
	if err != nil || len(ps) != 2 {
		t.Fatalf("FindByCreator = %+v, %v", ps, err)
	}
	for _, p := range ps {
		if p.Creator != "u1" {
			t.Fatalf("foreign place %+v", p)
		}
	}
	if ps, _ := s.Places().FindByCreator(ctx, "nobody"); len(ps) != 0 {
		t.Fatalf("expected none, got %d", len(ps))
	}
}
