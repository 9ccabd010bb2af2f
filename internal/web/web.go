// Package web serves the server-rendered Socialgram pages: the dashboard,
// the creation form and the idea editor.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/editor"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxFormBytes = 1 << 20

// Handler renders the HTML pages.
type Handler struct {
	repo     repository.Repository
	sessions *editor.Registry
	creator  *editor.Creator
	logger   *slog.Logger
	tmpl     *template.Template

	// creds, when set, protects every page with HTTP Basic auth.
	creds map[string]string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithBasicAuth requires user and password on every page.
func WithBasicAuth(user, password string) Option {
	return func(h *Handler) {
		if user != "" && password != "" {
			h.creds = map[string]string{user: password}
		}
	}
}

// New parses the embedded templates and returns a Handler.
func New(repo repository.Repository, sessions *editor.Registry, creator *editor.Creator, opts ...Option) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	h := &Handler{
		repo:     repo,
		sessions: sessions,
		creator:  creator,
		logger:   slog.Default(),
		tmpl:     tmpl,
	}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Routes returns the page router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.creds != nil {
		r.Use(middleware.BasicAuth("socialgram", h.creds))
	}
	r.Get("/", h.dashboard)
	r.Get("/ideas/new", h.newForm)
	r.Post("/ideas", h.create)
	r.Route("/ideas/{id}", func(r chi.Router) {
		r.Get("/", h.redirectEdit)
		r.Get("/edit", h.edit)
		r.Post("/title", h.commitTitle)
		r.Post("/fields", h.updateFields)
		r.Post("/script", h.saveScript)
		r.Post("/script/draft", h.draftScript)
		r.Post("/links/{category}", h.addLink)
		r.Post("/links/{category}/{index}/delete", h.removeLink)
		r.Post("/delete", h.delete)
	})
	return r
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("web: render failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	flash := popFlash(w, r)
	var failed *notify.Notification
	ideas, err := editor.Dashboard(r.Context(), h.repo, notify.Func(func(n notify.Notification) { failed = &n }))
	if err != nil && failed != nil {
		flash = failed
	}
	cards := make([]CardView, len(ideas))
	for i, idea := range ideas {
		cards[i] = NewCardView(idea)
	}
	h.render(w, http.StatusOK, "dashboard", dashboardPage{Flash: flash, Cards: cards})
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "new", h.newIdeaPage(models.DefaultNewIdeaForm(), nil, popFlash(w, r)))
}

func (h *Handler) newIdeaPage(f models.NewIdeaForm, errs map[string]string, flash *notify.Notification) newPage {
	return newPage{
		Flash:             flash,
		Form:              f,
		Errors:            errs,
		TypeOptions:       options(models.ContentTypeValues, f.Type, typeLabels),
		CreativeOptions:   options(models.CreativeStatusValues, f.CreativeStatus, creativeLabels),
		ProductionOptions: options(models.ProductionStageValues, f.ProductionStage, stageLabels),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	f := models.NewIdeaForm{
		Title:           r.PostForm.Get("title"),
		Type:            models.ContentType(r.PostForm.Get("type")),
		CreativeStatus:  models.CreativeStatus(r.PostForm.Get("creativeStatus")),
		ProductionStage: models.ProductionStage(r.PostForm.Get("productionStage")),
	}
	idea, err := h.creator.Create(r.Context(), f)
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		h.render(w, http.StatusUnprocessableEntity, "new", h.newIdeaPage(f, verr.Fields, nil))
		return
	case err != nil:
		n := notify.CreateFail
		h.render(w, http.StatusInternalServerError, "new", h.newIdeaPage(f, nil, &n))
		return
	}
	setFlash(w, notify.Created)
	http.Redirect(w, r, editURL(idea.ID, ""), http.StatusSeeOther)
}

func (h *Handler) redirectEdit(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, editURL(chi.URLParam(r, "id"), ""), http.StatusSeeOther)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.sessions.Open(r.Context(), id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		setFlash(w, notify.NotFound)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err != nil:
		h.logger.Error("web: load idea failed", slog.String("id", id), slog.String("error", err.Error()))
		setFlash(w, notify.LoadFailed)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	st := sess.SelectTab(editor.ParseTab(r.URL.Query().Get("tab")))
	h.render(w, http.StatusOK, "edit", newEditPage(st, sess.Script(), popFlash(w, r)))
}

// session returns the open session for the idea in the URL, loading it if
// needed. On failure the response has already been written.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	id := chi.URLParam(r, "id")
	if sess, ok := h.sessions.Get(id); ok {
		return sess, true
	}
	sess, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			setFlash(w, notify.NotFound)
		} else {
			setFlash(w, notify.LoadFailed)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return sess, true
}

// saved flashes the outcome of a mutation and returns to the editor.
func (h *Handler) saved(w http.ResponseWriter, r *http.Request, sess *editor.Session, err error) {
	switch {
	case err == nil:
		setFlash(w, notify.Saved)
	case errors.Is(err, apperr.ErrNotFound):
		setFlash(w, notify.NotFound)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	default:
		setFlash(w, notify.SaveFailed)
	}
	tab := editor.ParseTab(r.PostForm.Get("tab"))
	if r.PostForm.Get("tab") == "" {
		tab = sess.State().Tab
	}
	http.Redirect(w, r, editURL(sess.ID(), tab), http.StatusSeeOther)
}

func (h *Handler) commitTitle(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.EditTitle(r.PostForm.Get("title"))
	_, err := sess.CommitTitle(r.Context())
	h.saved(w, r, sess, err)
}

func (h *Handler) updateFields(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var p models.Patch
	if v, ok := r.PostForm["type"]; ok && len(v) > 0 {
		p.Type = models.Ptr(models.ContentType(v[0]))
	}
	if v, ok := r.PostForm["creativeStatus"]; ok && len(v) > 0 {
		p.CreativeStatus = models.Ptr(models.CreativeStatus(v[0]))
	}
	if v, ok := r.PostForm["productionStage"]; ok && len(v) > 0 {
		p.ProductionStage = models.Ptr(models.ProductionStage(v[0]))
	}
	if p.Empty() {
		http.Redirect(w, r, editURL(sess.ID(), sess.State().Tab), http.StatusSeeOther)
		return
	}
	_, err := sess.Update(r.Context(), p)
	h.saved(w, r, sess, err)
}

func (h *Handler) saveScript(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.EditScript(r.PostForm.Get("script")); err != nil {
		h.saved(w, r, sess, err)
		return
	}
	if !sess.FlushScript() {
		http.Redirect(w, r, editURL(sess.ID(), editor.TabScript), http.StatusSeeOther)
		return
	}
	var err error
	if msg := sess.State().LastError; msg != "" {
		err = errors.New(msg)
	}
	h.saved(w, r, sess, err)
}

// draftScript buffers a script edit from the page's autosave and answers
// with the autosave state. The edit is saved after the idle period.
func (h *Handler) draftScript(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		var err error
		if sess, err = h.sessions.Open(r.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, apperr.ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
	}
	if err := sess.EditScript(r.PostForm.Get("script")); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(sess.Script())
}

func (h *Handler) addLink(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	cat, err := models.ParseLinkCategory(chi.URLParam(r, "category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	before := sess.State().Idea.UpdatedAt
	idea, err := sess.AddLink(r.Context(), cat, r.PostForm.Get("url"))
	h.linkSaved(w, r, sess, cat, before, idea, err)
}

func (h *Handler) removeLink(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	cat, err := models.ParseLinkCategory(chi.URLParam(r, "category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid link index", http.StatusBadRequest)
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	before := sess.State().Idea.UpdatedAt
	idea, err := sess.RemoveLink(r.Context(), cat, i)
	h.linkSaved(w, r, sess, cat, before, idea, err)
}

// linkSaved reports a link edit. A no-op edit returns to the editor
// without a notification.
func (h *Handler) linkSaved(w http.ResponseWriter, r *http.Request, sess *editor.Session, cat models.LinkCategory, before time.Time, idea models.ContentIdea, err error) {
	tab := editor.TabLinks
	if cat == models.LinksReference {
		tab = editor.TabResources
	}
	if err == nil && idea.UpdatedAt.Equal(before) {
		http.Redirect(w, r, editURL(sess.ID(), tab), http.StatusSeeOther)
		return
	}
	r.PostForm.Set("tab", string(tab))
	h.saved(w, r, sess, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	deleted, err := sess.Delete(r.Context(), r.PostForm.Get("confirm") == "yes")
	switch {
	case err != nil:
		setFlash(w, notify.DeleteFail)
		http.Redirect(w, r, editURL(sess.ID(), sess.State().Tab), http.StatusSeeOther)
	case !deleted:
		http.Redirect(w, r, editURL(sess.ID(), sess.State().Tab), http.StatusSeeOther)
	default:
		h.sessions.Forget(sess.ID())
		setFlash(w, notify.Deleted)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return false
	}
	return true
}
