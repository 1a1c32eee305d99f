package inventory

import (
	"strings"

	"github.com/vbonduro/cookitup/internal/domain"
)

func validateDraft(d *domain.FoodItemDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	return domain.Validate(d)
}

func validatePatch(p *domain.FoodItemPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return &domain.ValidationError{Field: "name", Reason: "is required"}
		}
		p.Name = &name
	}
	// omitempty lets an explicit empty string through for these.
	if p.Unit != nil && *p.Unit == "" {
		return &domain.ValidationError{Field: "unit", Reason: "must be one of " + strings.Join(domain.Units, " ")}
	}
	if p.Type != nil && *p.Type == "" {
		return &domain.ValidationError{Field: "type", Reason: "must be one of " + strings.Join(domain.Categories, " ")}
	}
	return domain.Validate(p)
}
