package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
	"github.com/platewise/recipebox/pkg/helpers"
)

type RecipeService struct {
	Tags        repository.TagRepository
	Ingredients repository.IngredientRepository
	Recipes     repository.RecipeRepository
	Logger      *logrus.Logger

	AttrOrder repository.AttrOrder

	GCS       *storage.Client
	GCSBucket string

	ES             *elasticsearch.Client
	ESRecipesIndex string
}

func NewRecipeService(tags repository.TagRepository, ingredients repository.IngredientRepository, recipes repository.RecipeRepository, logger *logrus.Logger, attrOrder repository.AttrOrder, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esIndex string) *RecipeService {
	if !attrOrder.Valid() {
		attrOrder = repository.OrderByID
	}
	return &RecipeService{
		Tags:           tags,
		Ingredients:    ingredients,
		Recipes:        recipes,
		Logger:         logger,
		AttrOrder:      attrOrder,
		GCS:            gcs,
		GCSBucket:      gcsBucket,
		ES:             es,
		ESRecipesIndex: esIndex,
	}
}

func (s *RecipeService) ListTags(ctx context.Context, ownerID string) ([]entity.Tag, error) {
	return s.Tags.List(ctx, ownerID, s.AttrOrder)
}

func (s *RecipeService) CreateTag(ctx context.Context, ownerID, name string) (*entity.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "is required")
	}
	return s.Tags.Create(ctx, ownerID, name)
}

func (s *RecipeService) ListIngredients(ctx context.Context, ownerID string) ([]entity.Ingredient, error) {
	return s.Ingredients.List(ctx, ownerID, s.AttrOrder)
}

func (s *RecipeService) CreateIngredient(ctx context.Context, ownerID, name string) (*entity.Ingredient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "is required")
	}
	return s.Ingredients.Create(ctx, ownerID, name)
}

func (s *RecipeService) ListRecipes(ctx context.Context, ownerID string) ([]entity.Recipe, error) {
	return s.Recipes.List(ctx, ownerID)
}

func (s *RecipeService) GetRecipe(ctx context.Context, ownerID string, id int64) (*entity.RecipeDetail, error) {
	return s.Recipes.Get(ctx, ownerID, id)
}

func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID string, in repository.RecipeInput) (*entity.Recipe, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, newValidationError("title", "is required")
	}
	rec, err := s.Recipes.Create(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	s.indexRecipe(ctx, rec)
	return rec, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, ownerID string, id int64, in repository.RecipeInput) (*entity.Recipe, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, newValidationError("title", "is required")
	}
	rec, err := s.Recipes.Update(ctx, ownerID, id, in)
	if err != nil {
		return nil, err
	}
	s.indexRecipe(ctx, rec)
	return rec, nil
}

// PatchRecipe applies a partial update on top of the stored recipe.
func (s *RecipeService) PatchRecipe(ctx context.Context, ownerID string, id int64, patch RecipePatch) (*entity.Recipe, error) {
	current, err := s.Recipes.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	in := repository.RecipeInput{
		Title:         current.Title,
		TimeMinutes:   current.TimeMinutes,
		Price:         current.Price,
		TagIDs:        current.TagIDs,
		IngredientIDs: current.IngredientIDs,
	}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.TimeMinutes != nil {
		in.TimeMinutes = *patch.TimeMinutes
	}
	if patch.Price != nil {
		in.Price = *patch.Price
	}
	if patch.TagIDs != nil {
		in.TagIDs = *patch.TagIDs
	}
	if patch.IngredientIDs != nil {
		in.IngredientIDs = *patch.IngredientIDs
	}
	return s.UpdateRecipe(ctx, ownerID, id, in)
}

type RecipePatch struct {
	Title         *string
	TimeMinutes   *int
	Price         *float64
	TagIDs        *[]int64
	IngredientIDs *[]int64
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, ownerID string, id int64) error {
	if err := s.Recipes.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.deleteRecipeIndex(ctx, id)
	return nil
}

// UploadRecipeImage stores the image in GCS and records its public URL.
func (s *RecipeService) UploadRecipeImage(ctx context.Context, ownerID string, id int64, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("image storage not configured")
	}
	// Confirm ownership before touching storage.
	if _, err := s.Recipes.Get(ctx, ownerID, id); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("recipes", ownerID, fmt.Sprintf("%d-%s%s", id, uuid.NewString(), ext)))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Recipes.SetImageURL(ctx, ownerID, id, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *RecipeService) indexRecipe(ctx context.Context, rec *entity.Recipe) {
	if s.ES == nil || s.ESRecipesIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           rec.ID,
		"user_id":      rec.UserID,
		"title":        rec.Title,
		"time_minutes": rec.TimeMinutes,
		"price":        rec.Price,
		"updated_at":   rec.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESRecipesIndex,
		DocumentID: fmt.Sprintf("%d", rec.ID),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("recipe_id", rec.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("recipe_id", rec.ID).Warn("es index response error")
	}
}

func (s *RecipeService) deleteRecipeIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESRecipesIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESRecipesIndex, DocumentID: fmt.Sprintf("%d", id)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("recipe_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchRecipes runs a title match restricted to the caller's documents.
func (s *RecipeService) SearchRecipes(ctx context.Context, ownerID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESRecipesIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{"title": q},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": ownerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESRecipesIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
