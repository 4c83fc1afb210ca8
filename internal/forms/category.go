package forms

import (
	"context"
	"strconv"
)

type CategoryForm struct {
	Name        string `form:"name" json:"name" validate:"notblank,min=1,max=50"`
	Description string `form:"description" json:"description" validate:"max=200"`
}

type ValidatedCategory struct {
	Name        string
	Description *string
}

// Validate checks the name against existing categories. excludeID is the
// category being edited, or 0 when adding.
func (f CategoryForm) Validate(ctx context.Context, categories CategoryNameChecker, excludeID uint) (ValidatedCategory, error) {
	trim(&f.Name, &f.Description)
	errs := check(&f)

	if !errs.Has("name") {
		taken, err := categories.CategoryNameExists(ctx, f.Name, excludeID)
		if err != nil {
			return ValidatedCategory{}, err
		}
		if taken {
			errs.Add("name", MsgDuplicateName)
		}
	}

	if err := errs.orNil(); err != nil {
		return ValidatedCategory{}, err
	}

	out := ValidatedCategory{Name: f.Name}
	if f.Description != "" {
		desc := f.Description
		out.Description = &desc
	}
	return out, nil
}

// CategoryRefForm selects an existing category for edit and delete actions.
// Existence is checked by the service so a stale id reports not found.
type CategoryRefForm struct {
	CategoryID Choice `form:"category_id" json:"category_id" validate:"notblank"`
}

func (f CategoryRefForm) Validate(_ context.Context) (uint, error) {
	f.CategoryID = Choice(f.CategoryID.trimmed())
	errs := check(&f)
	if errs.Has("category_id") {
		return 0, errs
	}
	id, err := strconv.ParseUint(string(f.CategoryID), 10, 64)
	if err != nil || id == 0 {
		errs.Add("category_id", MsgInvalidInteger)
		return 0, errs
	}
	return uint(id), nil
}
