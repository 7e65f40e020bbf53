package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User // keyed by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *u
	cp.UpdatedAt = time.Now()
	r.users[u.ID] = &cp
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]string // sid -> userID
	ttls     map[string]time.Duration
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeSessionStore) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sid := fmt.Sprintf("sid-%d", s.seq)
	s.sessions[sid] = userID
	s.ttls[sid] = ttl
	return sid, nil
}

func (s *fakeSessionStore) Get(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[sid]
	if !ok {
		return "", ErrNoSession
	}
	return uid, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	delete(s.ttls, sid)
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	seq    int
	byUser map[string]string
	byTok  map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byUser: map[string]string{}, byTok: map[string]string{}}
}

func (s *fakeTokenStore) Mint(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.byUser[userID]; ok {
		return tok, nil
	}
	s.seq++
	tok := fmt.Sprintf("tok-%d", s.seq)
	s.byUser[userID] = tok
	s.byTok[tok] = userID
	return tok, nil
}

func (s *fakeTokenStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.byTok[token]
	if !ok {
		return "", ErrNoSession
	}
	return uid, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs [][]byte
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.jobs = append(p.jobs, b)
	return nil
}

type fakeTagRepo struct {
	mu   sync.Mutex
	seq  int64
	tags []entity.Tag
}

func (r *fakeTagRepo) List(_ context.Context, ownerID string, order repository.AttrOrder) ([]entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Tag
	for _, t := range r.tags {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sortTags(out, order)
	return out, nil
}

func (r *fakeTagRepo) Create(_ context.Context, ownerID, name string) (*entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t := entity.Tag{ID: r.seq, UserID: ownerID, Name: name}
	r.tags = append(r.tags, t)
	return &t, nil
}

func sortTags(tags []entity.Tag, order repository.AttrOrder) {
	sort.Slice(tags, func(i, j int) bool {
		if order == repository.OrderByName {
			return tags[i].Name > tags[j].Name
		}
		return tags[i].ID > tags[j].ID
	})
}

type fakeIngredientRepo struct {
	mu    sync.Mutex
	seq   int64
	ingrs []entity.Ingredient
}

func (r *fakeIngredientRepo) List(_ context.Context, ownerID string, order repository.AttrOrder) ([]entity.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Ingredient
	for _, in := range r.ingrs {
		if in.UserID == ownerID {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == repository.OrderByName {
			return out[i].Name > out[j].Name
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeIngredientRepo) Create(_ context.Context, ownerID, name string) (*entity.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	in := entity.Ingredient{ID: r.seq, UserID: ownerID, Name: name}
	r.ingrs = append(r.ingrs, in)
	return &in, nil
}

type fakeRecipeRepo struct {
	mu      sync.Mutex
	seq     int64
	recipes map[int64]*entity.Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: map[int64]*entity.Recipe{}}
}

func (r *fakeRecipeRepo) List(_ context.Context, ownerID string) ([]entity.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Recipe
	for _, rec := range r.recipes {
		if rec.UserID == ownerID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeRecipeRepo) Get(_ context.Context, ownerID string, id int64) (*entity.RecipeDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &entity.RecipeDetail{Recipe: cp}, nil
}

func (r *fakeRecipeRepo) Create(_ context.Context, ownerID string, in repository.RecipeInput) (*entity.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec := &entity.Recipe{
		ID:            r.seq,
		UserID:        ownerID,
		Title:         in.Title,
		TimeMinutes:   in.TimeMinutes,
		Price:         in.Price,
		TagIDs:        in.TagIDs,
		IngredientIDs: in.IngredientIDs,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	r.recipes[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (r *fakeRecipeRepo) Update(_ context.Context, ownerID string, id int64, in repository.RecipeInput) (*entity.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	rec.Title = in.Title
	rec.TimeMinutes = in.TimeMinutes
	rec.Price = in.Price
	rec.TagIDs = in.TagIDs
	rec.IngredientIDs = in.IngredientIDs
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

func (r *fakeRecipeRepo) Delete(_ context.Context, ownerID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}

func (r *fakeRecipeRepo) SetImageURL(_ context.Context, ownerID string, id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return repository.ErrNotFound
	}
	rec.ImageURL = url
	return nil
}
