package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vbonduro/cookitup/internal/domain"
)

// Wire shapes. Pointers separate a missing field from a zero value.
type payload struct {
	Recipes []rawRecipe `json:"recipes" validate:"required,dive"`
}

type rawRecipe struct {
	ID           *float64        `json:"id" validate:"required"`
	Name         *string         `json:"name" validate:"required"`
	Description  *string         `json:"description" validate:"required"`
	Ingredients  []rawIngredient `json:"ingredients" validate:"required,dive"`
	Instructions []string        `json:"instructions" validate:"required"`
	CookingTime  *string         `json:"cookingTime" validate:"required"`
	Difficulty   *string         `json:"difficulty" validate:"required"`
}

type rawIngredient struct {
	Name   *string `json:"name" validate:"required"`
	Amount string  `json:"amount"`
}

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// ParseRecipes decodes a completion into recipes. Any deviation from the
// schema yields a *domain.SchemaError and no recipes.
func ParseRecipes(text string) ([]domain.Recipe, error) {
	var p payload
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &p); err != nil {
		return nil, &domain.SchemaError{Reason: "response is not a valid recipe object", Err: err}
	}

	if err := schema.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &domain.SchemaError{Reason: "missing " + fieldPath(verrs[0])}
		}
		return nil, &domain.SchemaError{Reason: "schema check failed", Err: err}
	}

	recipes := make([]domain.Recipe, 0, len(p.Recipes))
	for i, r := range p.Recipes {
		id := *r.ID
		if id != math.Trunc(id) || id >= float64(math.MaxInt64) || id < float64(math.MinInt64) {
			return nil, &domain.SchemaError{Reason: fmt.Sprintf("recipes[%d].id is not an integer", i)}
		}

		ingredients := make([]domain.RecipeIngredient, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			ingredients = append(ingredients, domain.RecipeIngredient{Name: *ing.Name, Amount: ing.Amount})
		}

		recipes = append(recipes, domain.Recipe{
			ID:           int64(id),
			Name:         *r.Name,
			Description:  *r.Description,
			Ingredients:  ingredients,
			Instructions: r.Instructions,
			CookingTime:  *r.CookingTime,
			Difficulty:   *r.Difficulty,
		})
	}
	return recipes, nil
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// stripCodeFence unwraps a reply wrapped in a markdown code block.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}
