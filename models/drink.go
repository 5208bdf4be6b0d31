package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RecipePart is one colored ingredient of a drink
type RecipePart struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
	Parts int    `json:"parts" validate:"gte=1"`
}

// RecipePartSummary is the public view of a recipe part (no ingredient name)
type RecipePartSummary struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Recipe is the ordered list of parts making up a drink. It is stored as a
// JSON text column.
type Recipe []RecipePart

// UnmarshalJSON accepts either a single part object or an array of parts
func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}

	if trimmed[0] == '{' {
		var part RecipePart
		if err := json.Unmarshal(trimmed, &part); err != nil {
			return err
		}
		*r = Recipe{part}
		return nil
	}

	var parts []RecipePart
	if err := json.Unmarshal(trimmed, &parts); err != nil {
		return err
	}
	*r = parts
	return nil
}

// Value implements driver.Valuer
func (r Recipe) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]RecipePart(r))
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (r *Recipe) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported recipe column type %T", src)
	}
	return r.UnmarshalJSON(data)
}

// Summary returns the recipe without ingredient names
func (r Recipe) Summary() []RecipePartSummary {
	out := make([]RecipePartSummary, 0, len(r))
	for _, p := range r {
		out = append(out, RecipePartSummary{Color: p.Color, Parts: p.Parts})
	}
	return out
}

// Drink represents a menu item
type Drink struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Recipe    Recipe    `json:"recipe"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NewDrink creates a new Drink instance. The ID is assigned on insert.
func NewDrink(title string, recipe Recipe) *Drink {
	now := time.Now()
	return &Drink{
		Title:     title,
		Recipe:    recipe,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DrinkShort is the public menu representation of a drink
type DrinkShort struct {
	ID     int64               `json:"id"`
	Title  string              `json:"title"`
	Recipe []RecipePartSummary `json:"recipe"`
}

// DrinkLong is the detailed representation including ingredient names
type DrinkLong struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Recipe Recipe `json:"recipe"`
}

// Short returns the public menu representation
func (d *Drink) Short() DrinkShort {
	return DrinkShort{
		ID:     d.ID,
		Title:  d.Title,
		Recipe: d.Recipe.Summary(),
	}
}

// Long returns the detailed representation
func (d *Drink) Long() DrinkLong {
	recipe := d.Recipe
	if recipe == nil {
		recipe = Recipe{}
	}
	return DrinkLong{
		ID:     d.ID,
		Title:  d.Title,
		Recipe: recipe,
	}
}

// DefaultDrink is the seed row written when the drinks table is reset
func DefaultDrink() *Drink {
	return NewDrink("water", Recipe{{Name: "water", Color: "blue", Parts: 1}})
}
