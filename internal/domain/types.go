package domain

import "time"

// CategoryAll is the filter sentinel that matches every category.
const CategoryAll = "All"

// Categories is the fixed set of food types an item may belong to.
var Categories = []string{"Dairy", "Fruits", "Vegetables", "Protein", "Grains"}

// Units is the fixed set of weight units.
var Units = []string{"oz", "g", "lbs", "kg"}

type FoodItem struct {
	ID             int64     `json:"id"`
	Owner          string    `json:"-"`
	Name           string    `json:"name"`
	TotalQuantity  float64   `json:"totalQuantity"`
	WeightPerItem  float64   `json:"weightPerItem"`
	Unit           string    `json:"unit"`
	Type           string    `json:"type"`
	ExpirationDate string    `json:"expirationDate,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FoodItemDraft is the input to an add. Quantity fields are pointers so a
// missing value can be told apart from zero.
type FoodItemDraft struct {
	Name           string   `json:"name" validate:"required"`
	TotalQuantity  *float64 `json:"totalQuantity" validate:"required,gte=0"`
	WeightPerItem  *float64 `json:"weightPerItem" validate:"required,gte=0"`
	Unit           string   `json:"unit" validate:"required,oneof=oz g lbs kg"`
	Type           string   `json:"type" validate:"required,oneof=Dairy Fruits Vegetables Protein Grains"`
	ExpirationDate string   `json:"expirationDate" validate:"omitempty,isodate"`
}

// FoodItemPatch carries only the fields an edit supplies. A non-nil empty
// ExpirationDate clears the expiration.
type FoodItemPatch struct {
	Name           *string  `json:"name"`
	TotalQuantity  *float64 `json:"totalQuantity" validate:"omitempty,gte=0"`
	WeightPerItem  *float64 `json:"weightPerItem" validate:"omitempty,gte=0"`
	Unit           *string  `json:"unit" validate:"omitempty,oneof=oz g lbs kg"`
	Type           *string  `json:"type" validate:"omitempty,oneof=Dairy Fruits Vegetables Protein Grains"`
	ExpirationDate *string  `json:"expirationDate" validate:"omitempty,isodate"`
}

// Apply returns a copy of item with the supplied patch fields set.
func (p FoodItemPatch) Apply(item FoodItem) FoodItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.TotalQuantity != nil {
		item.TotalQuantity = *p.TotalQuantity
	}
	if p.WeightPerItem != nil {
		item.WeightPerItem = *p.WeightPerItem
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.ExpirationDate != nil {
		item.ExpirationDate = *p.ExpirationDate
	}
	return item
}

// Filter narrows a List call. Empty fields match everything.
type Filter struct {
	SearchTerm string
	Category   string
}

// Ingredient is one entry of an inventory snapshot handed to the recommender.
type Ingredient struct {
	Name          string
	Quantity      float64
	WeightPerItem float64
	Unit          string
}

type PreferenceKind string

const (
	PreferenceLike               PreferenceKind = "LIKE"
	PreferenceDislike            PreferenceKind = "DISLIKE"
	PreferenceDietaryRestriction PreferenceKind = "DIETARY_RESTRICTION"
)

type Preference struct {
	ID        int64          `json:"id"`
	Owner     string         `json:"-"`
	Name      string         `json:"name" validate:"required"`
	Kind      PreferenceKind `json:"kind" validate:"required,oneof=LIKE DISLIKE DIETARY_RESTRICTION"`
	CreatedAt time.Time      `json:"createdAt"`
}

type RecipeIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type Recipe struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Ingredients  []RecipeIngredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	CookingTime  string             `json:"cookingTime"`
	Difficulty   string             `json:"difficulty"`
}

// RecipeBatch is the result of one successful recommendation call.
type RecipeBatch struct {
	Recipes     []Recipe  `json:"recipes"`
	GeneratedAt time.Time `json:"generatedAt"`
}
