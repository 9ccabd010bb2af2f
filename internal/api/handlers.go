package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/socialgram/internal/editor"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

// Handler holds API route handlers.
type Handler struct {
	repo     repository.Repository
	sessions *editor.Registry
	creator  *editor.Creator
	notifier notify.Notifier
}

// NewHandler creates a new Handler.
func NewHandler(repo repository.Repository, sessions *editor.Registry, creator *editor.Creator, n notify.Notifier) *Handler {
	if n == nil {
		n = notify.Discard
	}
	return &Handler{repo: repo, sessions: sessions, creator: creator, notifier: n}
}

// ListIdeas handles GET /api/ideas.
//
//	@Summary		List every idea, most recently updated first
//	@Tags			ideas
//	@Produce		json
//	@Success		200		{object}	IdeaListResponse
//	@Security		BearerAuth
//	@Router			/ideas [get]
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := editor.Dashboard(r.Context(), h.repo, h.notifier)
	if err != nil {
		writeError(w, "list ideas", err)
		return
	}
	writeJSON(w, http.StatusOK, IdeaListResponse{Ideas: ideas, Total: len(ideas)})
}

// GetIdea handles GET /api/ideas/{id}.
//
//	@Summary		Get a single idea
//	@Tags			ideas
//	@Produce		json
//	@Param			id	path		string	true	"Idea ID"
//	@Success		200	{object}	models.ContentIdea
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [get]
func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := h.repo.FetchByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get idea", err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// CreateIdea handles POST /api/ideas.
//
//	@Summary		Create a new idea
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateIdeaRequest	true	"Idea to create"
//	@Success		201		{object}	models.ContentIdea
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	validationResponse
//	@Security		BearerAuth
//	@Router			/ideas [post]
func (h *Handler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	req := models.DefaultNewIdeaForm()
	if !decodeJSON(w, r, &req) {
		return
	}
	idea, err := h.creator.Create(r.Context(), req)
	if err != nil {
		writeError(w, "create idea", err)
		return
	}
	writeJSON(w, http.StatusCreated, idea)
}

// UpdateIdea handles PATCH /api/ideas/{id}.
//
//	@Summary		Partially update an idea
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Idea ID"
//	@Param			body	body		UpdateIdeaRequest	true	"Fields to change"
//	@Success		200		{object}	models.ContentIdea
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	validationResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [patch]
func (h *Handler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	var req UpdateIdeaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Empty() {
		writeJSON(w, http.StatusBadRequest, errorBody("no fields to update"))
		return
	}
	sess, err := h.sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "update idea", err)
		return
	}
	idea, err := sess.Update(r.Context(), req)
	if err != nil {
		writeError(w, "update idea", err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// DeleteIdea handles DELETE /api/ideas/{id}.
//
//	@Summary		Delete an idea
//	@Tags			ideas
//	@Param			id	path	string	true	"Idea ID"
//	@Success		204	"Idea deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id} [delete]
func (h *Handler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		writeError(w, "delete idea", err)
		return
	}
	if _, err := sess.Delete(r.Context(), true); err != nil {
		writeError(w, "delete idea", err)
		return
	}
	h.sessions.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// AddLink handles POST /api/ideas/{id}/links/{category}.
//
//	@Summary		Append a link to one of the idea's link lists
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"Idea ID"
//	@Param			category	path		string			true	"Link list"	Enums(reference, deployment, shoot, edit)
//	@Param			body		body		AddLinkRequest	true	"Link"
//	@Success		200			{object}	models.ContentIdea
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id}/links/{category} [post]
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseLinkCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	var req AddLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "add link", err)
		return
	}
	idea, err := sess.AddLink(r.Context(), category, req.URL)
	if err != nil {
		writeError(w, "add link", err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// RemoveLink handles DELETE /api/ideas/{id}/links/{category}/{index}.
//
//	@Summary		Remove a link by position
//	@Tags			links
//	@Produce		json
//	@Param			id			path		string	true	"Idea ID"
//	@Param			category	path		string	true	"Link list"	Enums(reference, deployment, shoot, edit)
//	@Param			index		path		int		true	"Zero-based position"
//	@Success		200			{object}	models.ContentIdea
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id}/links/{category}/{index} [delete]
func (h *Handler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseLinkCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	sess, err := h.sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "remove link", err)
		return
	}
	idea, err := sess.RemoveLink(r.Context(), category, index)
	if err != nil {
		writeError(w, "remove link", err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// PutScript handles PUT /api/ideas/{id}/script.
//
// The draft is buffered and saved once edits stop for the autosave idle
// period. ?flush=true saves immediately.
//
//	@Summary		Submit a script draft
//	@Tags			ideas
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Idea ID"
//	@Param			flush	query		bool			false	"Save immediately"
//	@Param			body	body		ScriptRequest	true	"Script draft"
//	@Success		202		{object}	ScriptResponse
//	@Success		200		{object}	ScriptResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ideas/{id}/script [put]
func (h *Handler) PutScript(w http.ResponseWriter, r *http.Request) {
	var req ScriptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		var err error
		if sess, err = h.sessions.Open(r.Context(), id); err != nil {
			writeError(w, "put script", err)
			return
		}
	}
	if err := sess.EditScript(req.Script); err != nil {
		writeError(w, "put script", err)
		return
	}

	status := http.StatusAccepted
	if flush, _ := strconv.ParseBool(r.URL.Query().Get("flush")); flush {
		sess.FlushScript()
		status = http.StatusOK
	}
	st := sess.Script()
	writeJSON(w, status, ScriptResponse{Pending: st.Pending, LastSaved: st.LastSaved})
}

// Search handles GET /api/search.
//
//	@Summary		Search idea titles and scripts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		501		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	s, ok := h.repo.(repository.Searcher)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorBody("search is not supported by this store"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := s.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []repository.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// LinkedIdeas handles GET /api/links.
//
//	@Summary		List ideas that reference a URL
//	@Tags			links
//	@Produce		json
//	@Param			url	query		string	true	"Exact URL"
//	@Success		200	{object}	LinkedIdeasResponse
//	@Failure		400	{object}	errResponse
//	@Failure		501	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links [get]
func (h *Handler) LinkedIdeas(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'url' is required"))
		return
	}
	lf, ok := h.repo.(repository.LinkFinder)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorBody("link lookup is not supported by this store"))
		return
	}
	ids, err := lf.IdeasLinking(r.Context(), u)
	if err != nil {
		writeError(w, "linked ideas", err)
		return
	}
	writeJSON(w, http.StatusOK, LinkedIdeasResponse{URL: u, Ideas: ids})
}
