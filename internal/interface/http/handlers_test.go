package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
	"github.com/platewise/recipebox/internal/interface/middleware"
	"github.com/platewise/recipebox/pkg/helpers"
	"github.com/platewise/recipebox/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// staticResolver authenticates every request as a fixed user, or rejects all
// requests when uid is empty.
type staticResolver struct {
	uid string
}

func (r staticResolver) Resolve(*gin.Context) (string, error) {
	if r.uid == "" {
		return "", application.ErrNoSession
	}
	return r.uid, nil
}

// envResolver reads the acting user from the env at request time, so a test
// can seed a user first and authenticate as it afterwards.
type envResolver struct {
	env *testEnv
}

func (r envResolver) Resolve(*gin.Context) (string, error) {
	if r.env.resolverUID == "" {
		return "", application.ErrNoSession
	}
	return r.env.resolverUID, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: map[string]*entity.User{}} }

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("u%d", r.seq)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
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

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]string
}

func newMemSessionStore() *memSessionStore { return &memSessionStore{sessions: map[string]string{}} }

func (s *memSessionStore) Create(_ context.Context, userID string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sid := fmt.Sprintf("sid%d", s.seq)
	s.sessions[sid] = userID
	return sid, nil
}

func (s *memSessionStore) Get(_ context.Context, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[sid]
	if !ok {
		return "", application.ErrNoSession
	}
	return uid, nil
}

func (s *memSessionStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

type memTokenStore struct {
	mu     sync.Mutex
	seq    int
	byUser map[string]string
	byTok  map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{byUser: map[string]string{}, byTok: map[string]string{}}
}

func (s *memTokenStore) Mint(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byUser[userID]; ok {
		return t, nil
	}
	s.seq++
	t := fmt.Sprintf("token%d", s.seq)
	s.byUser[userID] = t
	s.byTok[t] = userID
	return t, nil
}

func (s *memTokenStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.byTok[token]
	if !ok {
		return "", application.ErrNoSession
	}
	return uid, nil
}

type memTagRepo struct {
	mu   sync.Mutex
	seq  int64
	tags []entity.Tag
}

func (r *memTagRepo) List(_ context.Context, ownerID string, _ repository.AttrOrder) ([]entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Tag
	for _, t := range r.tags {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memTagRepo) Create(_ context.Context, ownerID, name string) (*entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t := entity.Tag{ID: r.seq, UserID: ownerID, Name: name}
	r.tags = append(r.tags, t)
	return &t, nil
}

type memIngredientRepo struct {
	mu    sync.Mutex
	seq   int64
	ingrs []entity.Ingredient
}

func (r *memIngredientRepo) List(_ context.Context, ownerID string, _ repository.AttrOrder) ([]entity.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Ingredient
	for _, in := range r.ingrs {
		if in.UserID == ownerID {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memIngredientRepo) Create(_ context.Context, ownerID, name string) (*entity.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	in := entity.Ingredient{ID: r.seq, UserID: ownerID, Name: name}
	r.ingrs = append(r.ingrs, in)
	return &in, nil
}

type memRecipeRepo struct {
	mu      sync.Mutex
	seq     int64
	recipes map[int64]*entity.Recipe
	tags    *memTagRepo
	ingrs   *memIngredientRepo
}

func newMemRecipeRepo(tags *memTagRepo, ingrs *memIngredientRepo) *memRecipeRepo {
	return &memRecipeRepo{recipes: map[int64]*entity.Recipe{}, tags: tags, ingrs: ingrs}
}

func (r *memRecipeRepo) List(_ context.Context, ownerID string) ([]entity.Recipe, error) {
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

func (r *memRecipeRepo) Get(_ context.Context, ownerID string, id int64) (*entity.RecipeDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	d := &entity.RecipeDetail{Recipe: *rec}
	for _, tid := range rec.TagIDs {
		for _, t := range r.tags.tags {
			if t.ID == tid {
				d.Tags = append(d.Tags, t)
			}
		}
	}
	for _, iid := range rec.IngredientIDs {
		for _, in := range r.ingrs.ingrs {
			if in.ID == iid {
				d.Ingredients = append(d.Ingredients, in)
			}
		}
	}
	return d, nil
}

func (r *memRecipeRepo) Create(_ context.Context, ownerID string, in repository.RecipeInput) (*entity.Recipe, error) {
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
	}
	r.recipes[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (r *memRecipeRepo) Update(_ context.Context, ownerID string, id int64, in repository.RecipeInput) (*entity.Recipe, error) {
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
	cp := *rec
	return &cp, nil
}

func (r *memRecipeRepo) Delete(_ context.Context, ownerID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.recipes, id)
	return nil
}

func (r *memRecipeRepo) SetImageURL(_ context.Context, ownerID string, id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok || rec.UserID != ownerID {
		return repository.ErrNotFound
	}
	rec.ImageURL = url
	return nil
}

// testEnv bundles the in-memory backends and a router mirroring the deployed
// route table, minus rate limiting.
type testEnv struct {
	users    *memUserRepo
	sessions *memSessionStore
	tokens   *memTokenStore
	tags     *memTagRepo
	ingrs    *memIngredientRepo
	recipes  *memRecipeRepo

	userSvc *application.UserService
	authSvc *application.AuthService

	// resolverUID is read by envResolver on each request.
	resolverUID string
}

func newTestEnv(t *testing.T, resolver middleware.CurrentUserResolver) (*testEnv, *gin.Engine) {
	t.Helper()
	env := buildEnv(t)
	return env, buildRouter(env, resolver)
}

// newTestEnvWithSessions routes protected endpoints through the real session
// store, so cookie round trips behave as deployed.
func newTestEnvWithSessions(t *testing.T) (*testEnv, *gin.Engine) {
	t.Helper()
	env := buildEnv(t)
	return env, buildRouter(env, &middleware.SessionResolver{Store: env.sessions})
}

// newTestEnvDeferredResolver lets the test choose the acting user after
// seeding by assigning env.resolverUID.
func newTestEnvDeferredResolver(t *testing.T) (*testEnv, *gin.Engine) {
	t.Helper()
	env := buildEnv(t)
	return env, buildRouter(env, envResolver{env: env})
}

func buildEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    newMemUserRepo(),
		sessions: newMemSessionStore(),
		tokens:   newMemTokenStore(),
		tags:     &memTagRepo{},
		ingrs:    &memIngredientRepo{},
	}
	env.recipes = newMemRecipeRepo(env.tags, env.ingrs)

	resetTokens := helpers.NewResetTokenManager("test-secret", 30*time.Minute)
	env.userSvc = application.NewUserService(env.users, resetTokens, nil, nil, "RecipeBox", "https://app.example.com/reset", false)
	env.authSvc = application.NewAuthService(env.users, env.sessions, env.tokens, nil, 24*time.Hour, 0)
	return env
}

func buildRouter(env *testEnv, resolver middleware.CurrentUserResolver) *gin.Engine {
	recipeSvc := application.NewRecipeService(env.tags, env.ingrs, env.recipes, nil, repository.OrderByID, nil, "", nil, "")

	userHandler := NewUserHandler(env.userSvc, env.authSvc, nil, "", false)
	resetHandler := NewPasswordResetHandler(env.userSvc, nil)
	attrHandler := NewAttrHandler(recipeSvc, nil)
	recipeHandler := NewRecipeHandler(recipeSvc, nil)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/users/create", userHandler.Create)
	api.POST("/users/token", userHandler.Token)
	api.POST("/users/login", userHandler.Login)
	api.POST("/users/password-reset", resetHandler.Init)
	api.POST("/users/password-reset/confirm", resetHandler.Confirm)

	auth := api.Group("/")
	auth.Use(middleware.Auth(resolver))
	auth.GET("/users/me", userHandler.Me)
	auth.PATCH("/users/me", userHandler.UpdateMe)
	auth.POST("/users/me", MethodNotAllowed)
	auth.POST("/users/logout", userHandler.Logout)

	recipes := api.Group("/recipes")
	recipes.Use(middleware.Auth(resolver))
	recipes.GET("/tags", attrHandler.ListTags)
	recipes.POST("/tags", attrHandler.CreateTag)
	recipes.GET("/ingredients", attrHandler.ListIngredients)
	recipes.POST("/ingredients", attrHandler.CreateIngredient)
	recipes.GET("/recipes", recipeHandler.List)
	recipes.POST("/recipes", recipeHandler.Create)
	recipes.GET("/recipes/search", recipeHandler.Search)
	recipes.GET("/recipes/:id", recipeHandler.Get)
	recipes.PUT("/recipes/:id", recipeHandler.Update)
	recipes.PATCH("/recipes/:id", recipeHandler.Patch)
	recipes.DELETE("/recipes/:id", recipeHandler.Delete)
	recipes.POST("/recipes/:id/image", recipeHandler.UploadImage)

	return r
}

// seedUser registers a user directly through the service and returns its id.
func (env *testEnv) seedUser(t *testing.T, email, password string) string {
	t.Helper()
	u, err := env.userSvc.Register(context.Background(), application.RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	return u.ID
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
