package forms

import (
	"context"
	"strconv"
)

type TicketForm struct {
	Title       string `form:"title" json:"title" validate:"notblank,min=1,max=140"`
	CategoryID  Choice `form:"category_id" json:"category_id" validate:"notblank"`
	Description string `form:"description" json:"description" validate:"notblank,min=1,max=140"`
}

type ValidatedTicket struct {
	Title       string
	CategoryID  uint
	Description string
}

// Validate coerces category_id to an integer and requires it to be one of choices.
func (f TicketForm) Validate(_ context.Context, choices []uint) (ValidatedTicket, error) {
	trim(&f.Title, &f.Description)
	f.CategoryID = Choice(f.CategoryID.trimmed())
	errs := check(&f)

	var categoryID uint
	if !errs.Has("category_id") {
		id, ok := parseChoice(string(f.CategoryID), choices)
		if !ok {
			errs.Add("category_id", MsgInvalidChoice)
		}
		categoryID = id
	}

	if err := errs.orNil(); err != nil {
		return ValidatedTicket{}, err
	}
	return ValidatedTicket{Title: f.Title, CategoryID: categoryID, Description: f.Description}, nil
}

type ResponseForm struct {
	Content string `form:"content" json:"content" validate:"notblank,min=1,max=500"`
}

type ValidatedResponse struct {
	Content string
}

func (f ResponseForm) Validate(_ context.Context) (ValidatedResponse, error) {
	trim(&f.Content)
	if err := check(&f).orNil(); err != nil {
		return ValidatedResponse{}, err
	}
	return ValidatedResponse{Content: f.Content}, nil
}

// ConfirmForm backs actions that carry no data, such as resolving a ticket or
// deleting a category.
type ConfirmForm struct{}

type ValidatedConfirm struct{}

func (f ConfirmForm) Validate(_ context.Context) (ValidatedConfirm, error) {
	return ValidatedConfirm{}, nil
}

func parseChoice(raw string, choices []uint) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	for _, c := range choices {
		if uint(id) == c {
			return c, true
		}
	}
	return 0, false
}
