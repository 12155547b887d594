package ez

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"places-api/internal/domain"
	mdw "places-api/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

type memAssets struct {
	mu      sync.Mutex
	deleted []string
}

func (m *memAssets) Save(_ context.Context, name, _ string, _ io.Reader) (string, error) {
	return "mem/" + name, nil
}

func (m *memAssets) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ref)
	return nil
}

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newEngine(d *Deps, mount func(e EZ)) *gin.Engine {
	r := gin.New()
	mount(New(r.Group("/api"), d))
	return r
}

func TestFailHidesInternalCause(t *testing.T) {
	r := newEngine(nil, func(e EZ) {
		RegisterAction(e, Action[struct{}, gin.H]{
			Method: http.MethodGet,
			Path:   "/boom",
			Binder: BindNone,
			Handler: func(*gin.Context, *struct{}) (gin.H, error) {
				return nil, errors.New("dial tcp 10.0.0.1:5432: connection refused")
			},
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.1") {
		t.Fatalf("internal cause leaked: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"message"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestDomainErrorStatusAndMessage(t *testing.T) {
	r := newEngine(nil, func(e EZ) {
		RegisterAction(e, Action[struct{}, gin.H]{
			Method: http.MethodDelete,
			Path:   "/things/:id",
			Binder: BindNone,
			Handler: func(*gin.Context, *struct{}) (gin.H, error) {
				return nil, domain.NotFound("Could not find the thing")
			},
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/things/1", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if want := `{"message":"Could not find the thing"}`; w.Body.String() != want {
		t.Fatalf("body = %s, want %s", w.Body.String(), want)
	}
}

func TestBindErrorIs422(t *testing.T) {
	called := false
	r := newEngine(nil, func(e EZ) {
		RegisterAction(e, Action[echoIn, gin.H]{
			Path:   "/echo",
			Binder: BindJSON,
			Handler: func(_ *gin.Context, in *echoIn) (gin.H, error) {
				called = true
				return gin.H{"name": in.Name}, nil
			},
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	if called {
		t.Fatal("handler must not run on invalid input")
	}
}

func TestAuthActionWithoutUser(t *testing.T) {
	r := newEngine(nil, func(e EZ) {
		RegisterAction(e, Action[struct{}, gin.H]{
			Method: http.MethodGet,
			Path:   "/me",
			Binder: BindNone,
			Auth:   true,
			Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
				return gin.H{"id": UserID(c)}, nil
			},
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSuccessStatusAndUserID(t *testing.T) {
	r := gin.New()
	api := New(r.Group("/api", func(c *gin.Context) { c.Set(mdw.KeyUserID, "u1") }), nil)
	RegisterAction(api, Action[struct{}, gin.H]{
		Path:   "/things",
		Binder: BindNone,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"id": UserID(c)}, nil
		},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/things", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if want := `{"id":"u1"}`; w.Body.String() != want {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestFailDiscardsUpload(t *testing.T) {
	store := &memAssets{}
	r := newEngine(&Deps{Assets: store}, func(e EZ) {
		RegisterAction(e, Action[struct{}, gin.H]{
			Path:   "/upload",
			Binder: BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
				c.Set(keyUploadedAsset, "mem/x.png")
				return nil, domain.Geocoding("Could not find the location for the specified address")
			},
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/upload", nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "mem/x.png" {
		t.Fatalf("deleted = %v", store.deleted)
	}
}
