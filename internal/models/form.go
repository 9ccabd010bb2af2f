package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MinTitleLength is the shortest title accepted when creating an idea.
const MinTitleLength = 3

// NewIdeaForm is the input needed to create an idea.
type NewIdeaForm struct {
	Title           string          `json:"title"`
	Type            ContentType     `json:"type"`
	CreativeStatus  CreativeStatus  `json:"creativeStatus"`
	ProductionStage ProductionStage `json:"productionStage"`
}

// DefaultNewIdeaForm returns the form pre-filled the way the creation page shows it.
func DefaultNewIdeaForm() NewIdeaForm {
	return NewIdeaForm{
		Type:            TypeShortForm,
		CreativeStatus:  CreativeIdeation,
		ProductionStage: StageNotStarted,
	}
}

// Validate validates the form. The returned error is a validation.Errors
// keyed by JSON field name.
func (f NewIdeaForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title,
			validation.Required.Error("Title must be at least 3 characters"),
			validation.RuneLength(MinTitleLength, 0).Error("Title must be at least 3 characters"),
		),
		validation.Field(&f.Type, validation.Required, validation.In(anySlice(ContentTypeValues)...)),
		validation.Field(&f.CreativeStatus, validation.Required, validation.In(anySlice(CreativeStatusValues)...)),
		validation.Field(&f.ProductionStage, validation.Required, validation.In(anySlice(ProductionStageValues)...)),
	)
}

// NewIdea builds a fresh idea from a validated form.
func NewIdea(f NewIdeaForm, id string, now time.Time) ContentIdea {
	ts := now.UTC().Truncate(time.Microsecond)
	idea := ContentIdea{
		ID:              id,
		Title:           f.Title,
		Type:            f.Type,
		CreativeStatus:  f.CreativeStatus,
		ProductionStage: f.ProductionStage,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	idea.Normalize()
	return idea
}
