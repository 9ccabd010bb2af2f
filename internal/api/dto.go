package api

import (
	"time"

	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/repository"
)

// CreateIdeaRequest is the request body for creating an idea. Omitted enum
// fields take the creation-form defaults.
type CreateIdeaRequest = models.NewIdeaForm

// UpdateIdeaRequest is a partial update; omitted fields are unchanged.
type UpdateIdeaRequest = models.Patch

// IdeaListResponse wraps the dashboard listing.
type IdeaListResponse struct {
	Ideas []models.ContentIdea `json:"ideas" validate:"required"`
	Total int                  `json:"total" example:"3" validate:"required"`
}

// AddLinkRequest is the request body for appending a link.
type AddLinkRequest struct {
	URL string `json:"url" example:"https://instagram.com/design" validate:"required"`
}

// ScriptRequest carries a script draft.
type ScriptRequest struct {
	Script string `json:"script" example:"# Intro" validate:"required"`
}

// ScriptResponse reports the autosave state after a draft.
type ScriptResponse struct {
	Pending   bool       `json:"pending"`
	LastSaved *time.Time `json:"lastSaved"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []repository.SearchResult `json:"results" validate:"required"`
}

// LinkedIdeasResponse lists ideas referencing a URL.
type LinkedIdeasResponse struct {
	URL   string   `json:"url" validate:"required"`
	Ideas []string `json:"ideas" validate:"required"`
}
