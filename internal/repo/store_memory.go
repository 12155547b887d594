package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"places-api/internal/domain"
)

// MemStore 进程内实现（db.driver=memory），用于本地开发和测试。
// 事务持有全局锁并在副本上执行，提交时整体替换，失败或 panic 时丢弃副本。
type MemStore struct {
	mu sync.Mutex
	st *memState
}

func NewMemStore() *MemStore { return &MemStore{st: newMemState()} }

func (m *MemStore) view() memView {
	return memView{mu: &m.mu, get: func() *memState { return m.st }}
}

func (m *MemStore) Users() domain.UserRepository   { return memUsers{m.view()} }
func (m *MemStore) Places() domain.PlaceRepository { return memPlaces{m.view()} }

func (m *MemStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := m.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	m.st = work
	return nil
}

type memTx struct{ st *memState }

func (t *memTx) view() memView {
	return memView{mu: noLock{}, get: func() *memState { return t.st }}
}

func (t *memTx) Users() domain.UserRepository   { return memUsers{t.view()} }
func (t *memTx) Places() domain.PlaceRepository { return memPlaces{t.view()} }

// WithinTx 嵌套事务：相当于 savepoint
func (t *memTx) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	work := t.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	*t.st = *work
	return nil
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

type memView struct {
	mu  sync.Locker
	get func() *memState
}

type memState struct {
	users      map[string]domain.User
	userOrder  []string
	places     map[string]domain.Place
	placeOrder []string
}

func newMemState() *memState {
	return &memState{users: map[string]domain.User{}, places: map[string]domain.Place{}}
}

func (s *memState) clone() *memState {
	c := &memState{
		users:      make(map[string]domain.User, len(s.users)),
		userOrder:  slices.Clone(s.userOrder),
		places:     make(map[string]domain.Place, len(s.places)),
		placeOrder: slices.Clone(s.placeOrder),
	}
	for k, u := range s.users {
		u.Places = slices.Clone(u.Places)
		c.users[k] = u
	}
	for k, p := range s.places {
		c.places[k] = p
	}
	return c
}

func copyUser(u domain.User) *domain.User {
	u.Places = slices.Clone(u.Places)
	if u.Places == nil {
		u.Places = []string{}
	}
	return &u
}

type memUsers struct{ v memView }

func (r memUsers) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	for _, existing := range st.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if _, ok := st.users[u.ID]; ok {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	st.users[u.ID] = *copyUser(*u)
	st.userOrder = append(st.userOrder, u.ID)
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	u, ok := r.v.get().users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	for _, u := range r.v.get().users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r memUsers) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	out := make([]domain.User, 0, len(st.userOrder))
	for _, id := range st.userOrder {
		out = append(out, *copyUser(st.users[id]))
	}
	return out, nil
}

func (r memUsers) AppendPlace(ctx context.Context, userID, placeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	u, ok := st.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if slices.Contains(u.Places, placeID) {
		return fmt.Errorf("place %s already linked to user %s", placeID, userID)
	}
	u.Places = append(slices.Clone(u.Places), placeID)
	u.UpdatedAt = time.Now()
	st.users[userID] = u
	return nil
}

func (r memUsers) RemovePlace(ctx context.Context, userID, placeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	u, ok := st.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	u.Places = slices.DeleteFunc(slices.Clone(u.Places), func(id string) bool { return id == placeID })
	u.UpdatedAt = time.Now()
	st.users[userID] = u
	return nil
}

type memPlaces struct{ v memView }

func (r memPlaces) Create(ctx context.Context, p *domain.Place) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	if _, ok := st.places[p.ID]; ok {
		return fmt.Errorf("place %s already exists", p.ID)
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	st.places[p.ID] = *p
	st.placeOrder = append(st.placeOrder, p.ID)
	return nil
}

func (r memPlaces) FindByID(ctx context.Context, id string) (*domain.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	p, ok := r.v.get().places[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPlaces) FindByCreator(ctx context.Context, userID string) ([]domain.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	var out []domain.Place
	for _, id := range st.placeOrder {
		if p := st.places[id]; p.Creator == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPlaces) UpdateDetails(ctx context.Context, id, title, description string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	p, ok := st.places[id]
	if !ok {
		return fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
	}
	p.Title, p.Description = title, description
	p.UpdatedAt = time.Now()
	st.places[id] = p
	return nil
}

func (r memPlaces) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	st := r.v.get()
	if _, ok := st.places[id]; !ok {
		return fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
	}
	delete(st.places, id)
	st.placeOrder = slices.DeleteFunc(st.placeOrder, func(pid string) bool { return pid == id })
	return nil
}

var (
	_ domain.Store = (*MemStore)(nil)
	_ domain.Store = (*memTx)(nil)
)
