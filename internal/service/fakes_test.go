package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/gateway"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var errStore = errors.New("store unavailable")

var nopLog = zerolog.Nop()

type fakeDocRepo struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]*model.Document
	clock     time.Time
	creates   int
	updates   int
	failWrite bool
	failRead  bool
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:  make(map[uuid.UUID]*model.Document),
		clock: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *fakeDocRepo) Create(ctx context.Context, d *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.failWrite {
		return errStore
	}
	r.clock = r.clock.Add(time.Minute)
	d.ID = uuid.New()
	d.CreatedAt, d.UpdatedAt = r.clock, r.clock
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *fakeDocRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter model.DocumentFilter) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead {
		return nil, errStore
	}
	var out []model.Document
	for _, d := range r.docs {
		if d.OwnerID == ownerID && filter.Match(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead {
		return nil, errStore
	}
	d, ok := r.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocRepo) Update(ctx context.Context, ownerID, id uuid.UUID, patch model.DocumentPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.failWrite {
		return errStore
	}
	d, ok := r.docs[id]
	if !ok || d.OwnerID != ownerID {
		return pgx.ErrNoRows
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if len(patch.Content) > 0 {
		d.Content = append([]byte(nil), patch.Content...)
	}
	return nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return errStore
	}
	if d, ok := r.docs[id]; ok && d.OwnerID == ownerID {
		delete(r.docs, id)
	}
	return nil
}

type fakeQuizCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*model.SoalContent
	owners  map[uuid.UUID]uuid.UUID
	hits    int
}

func newFakeQuizCache() *fakeQuizCache {
	return &fakeQuizCache{
		entries: make(map[uuid.UUID]*model.SoalContent),
		owners:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (c *fakeQuizCache) Get(ctx context.Context, ownerID, documentID uuid.UUID) (*model.SoalContent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[documentID]
	if !ok || c.owners[documentID] != ownerID {
		return nil, false
	}
	c.hits++
	return s, true
}

func (c *fakeQuizCache) Set(ctx context.Context, ownerID, documentID uuid.UUID, soal *model.SoalContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[documentID] = soal
	c.owners[documentID] = ownerID
}

func (c *fakeQuizCache) Invalidate(ctx context.Context, documentID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, documentID)
}

type fakeGenerator struct {
	text string
	err  error
	last gateway.Request
}

func (g *fakeGenerator) Generate(ctx context.Context, req gateway.Request) (string, error) {
	g.last = req
	return g.text, g.err
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*model.Profile
	fail     bool
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	if r.fail {
		return nil, errStore
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	if r.fail {
		return errStore
	}
	if r.profiles == nil {
		r.profiles = make(map[uuid.UUID]*model.Profile)
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	if r.users == nil {
		r.users = make(map[string]*model.User)
	}
	u.ID = uuid.New()
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeSessions struct {
	jti map[uuid.UUID]string
}

func (s *fakeSessions) Put(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error {
	if s.jti == nil {
		s.jti = make(map[uuid.UUID]string)
	}
	s.jti[userID] = jti
	return nil
}

func (s *fakeSessions) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.jti[userID], nil
}

func (s *fakeSessions) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(s.jti, userID)
	return nil
}
