package entity

import "time"

// Tag and Ingredient are owner-scoped recipe attributes.
// The owner is fixed at creation and never reassigned.
type Tag struct {
	ID     int64
	UserID string
	Name   string
}

type Ingredient struct {
	ID     int64
	UserID string
	Name   string
}

// Recipe in its summary form carries tag/ingredient references by id only.
type Recipe struct {
	ID            int64
	UserID        string
	Title         string
	TimeMinutes   int
	Price         float64
	ImageURL      string
	TagIDs        []int64
	IngredientIDs []int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeDetail expands the associations inline. Used for single-item retrieval only.
type RecipeDetail struct {
	Recipe
	Tags        []Tag
	Ingredients []Ingredient
}
