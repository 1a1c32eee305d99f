package recommend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vbonduro/cookitup/internal/domain"
)

// RecipeCount is how many recipes each call asks for.
const RecipeCount = 3

// SystemPrompt fixes the assistant's role and the exact reply schema.
var SystemPrompt = fmt.Sprintf(`You are a creative chef that provides detailed recipe recommendations based on available ingredients and their quantities.
Consider the available quantities when suggesting recipes and try to use up as much of the available ingredients as possible.
Only use the listed ingredients plus basic staples such as salt, pepper, oil and water.
Generate exactly %d recipes.
Respond with a single JSON object and nothing else, in exactly this format:
{
  "recipes": [
    {
      "id": 1,
      "name": "Recipe Name",
      "description": "Brief description",
      "ingredients": [
        {"name": "ingredient name", "amount": "amount needed"}
      ],
      "instructions": ["step 1", "step 2"],
      "cookingTime": "30 minutes",
      "difficulty": "Easy"
    }
  ]
}`, RecipeCount)

type promptPreference struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// UserMessage lists every ingredient with its available quantity, followed
// by the preferences as JSON when there are any.
func UserMessage(ingredients []domain.Ingredient, prefs []domain.Preference) (string, error) {
	parts := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		parts = append(parts, describe(ing))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on these available ingredients and their quantities: %s, generate %d possible recipes in JSON format. "+
		"Make sure the recipes respect the available quantities of ingredients.",
		strings.Join(parts, ", "), RecipeCount)

	if len(prefs) > 0 {
		pp := make([]promptPreference, 0, len(prefs))
		for _, p := range prefs {
			pp = append(pp, promptPreference{Name: p.Name, Kind: string(p.Kind)})
		}
		encoded, err := json.Marshal(pp)
		if err != nil {
			return "", fmt.Errorf("failed to encode preferences: %w", err)
		}
		b.WriteString("\nDietary preferences: ")
		b.Write(encoded)
	}

	return b.String(), nil
}

func describe(ing domain.Ingredient) string {
	qty := strconv.FormatFloat(ing.Quantity, 'f', -1, 64)
	if ing.WeightPerItem > 0 && ing.Unit != "" {
		weight := strconv.FormatFloat(ing.WeightPerItem, 'f', -1, 64)
		return fmt.Sprintf("%s (%s available, %s %s each)", ing.Name, qty, weight, ing.Unit)
	}
	return fmt.Sprintf("%s (%s available)", ing.Name, qty)
}
