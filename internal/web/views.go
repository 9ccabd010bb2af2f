package web

import (
	"bytes"
	"html/template"
	"net/url"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/starford/socialgram/internal/badge"
	"github.com/starford/socialgram/internal/editor"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
)

const (
	cardDateLayout = "Jan 2, 2006"
	excerptRunes   = 100
)

// CardView is one dashboard card.
type CardView struct {
	ID         string
	Title      string
	Type       models.ContentType
	Creative   badge.Style
	Production badge.Style
	Excerpt    string
	Updated    string
	EditURL    string
}

// NewCardView builds the card for idea.
func NewCardView(idea models.ContentIdea) CardView {
	return CardView{
		ID:         idea.ID,
		Title:      idea.Title,
		Type:       idea.Type,
		Creative:   badge.For(badge.Creative, string(idea.CreativeStatus)),
		Production: badge.For(badge.Production, string(idea.ProductionStage)),
		Excerpt:    Excerpt(idea.Script, excerptRunes),
		Updated:    idea.UpdatedAt.Format(cardDateLayout),
		EditURL:    editURL(idea.ID, ""),
	}
}

// Excerpt returns the first n runes of script followed by "...", or ""
// for an empty script.
func Excerpt(script string, n int) string {
	if script == "" {
		return ""
	}
	if utf8.RuneCountInString(script) > n {
		script = string([]rune(script)[:n])
	}
	return script + "..."
}

var (
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts a script to sanitised HTML for the preview pane.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitised above
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

func options[T ~string](values []T, current T, labels map[T]string) []option {
	out := make([]option, len(values))
	for i, v := range values {
		label := labels[v]
		if label == "" {
			label = string(v)
		}
		out[i] = option{Value: string(v), Label: label, Selected: v == current}
	}
	return out
}

var (
	typeLabels = map[models.ContentType]string{
		models.TypeShortForm: "Short-form",
		models.TypeLongForm:  "Long-form",
	}
	creativeLabels = map[models.CreativeStatus]string{
		models.CreativeIdeation:  "Ideation",
		models.CreativeScripting: "Scripting",
		models.CreativeEditing:   "Editing",
		models.CreativePublished: "Published",
	}
	stageLabels = map[models.ProductionStage]string{
		models.StageNotStarted:   "Not Started",
		models.StageShootPending: "Shoot Pending",
		models.StageShootDone:    "Shoot Done",
		models.StageEditing:      "Editing",
		models.StagePosted:       "Posted",
	}
)

// linkSection describes one link list on the edit page.
type linkSection struct {
	Category    models.LinkCategory
	Heading     string
	Description string
	Title       string
	Links       []string
}

var linkMeta = map[models.LinkCategory]linkSection{
	models.LinksReference:  {Heading: "Reference Resources", Description: "External links for research and inspiration", Title: "Reference Links"},
	models.LinksDeployment: {Heading: "Deployment Links", Description: "Where the content has been published", Title: "Published Content Links"},
	models.LinksShoot:      {Heading: "Shoot Files", Description: "Raw footage and assets", Title: "Shoot File Links"},
	models.LinksEdit:       {Heading: "Edit Files", Description: "Links to project files for editing", Title: "Edit File Links"},
}

func sections(idea models.ContentIdea, cats ...models.LinkCategory) []linkSection {
	out := make([]linkSection, len(cats))
	for i, c := range cats {
		s := linkMeta[c]
		s.Category = c
		s.Links = idea.Links(c)
		out[i] = s
	}
	return out
}

type tabView struct {
	Tab    editor.Tab
	Label  string
	URL    string
	Active bool
}

var tabLabels = map[editor.Tab]string{
	editor.TabScript:    "Script",
	editor.TabResources: "Resources",
	editor.TabLinks:     "Links",
}

type dashboardPage struct {
	Flash *notify.Notification
	Cards []CardView
}

type newPage struct {
	Flash             *notify.Notification
	Form              models.NewIdeaForm
	Errors            map[string]string
	TypeOptions       []option
	CreativeOptions   []option
	ProductionOptions []option
}

type editPage struct {
	Flash             *notify.Notification
	Idea              models.ContentIdea
	TitleDraft        string
	Saving            bool
	Tab               editor.Tab
	Tabs              []tabView
	TypeOptions       []option
	CreativeOptions   []option
	ProductionOptions []option
	Script            string
	Preview           template.HTML
	Resources         []linkSection
	Links             []linkSection
	LastSaved         string
}

func newEditPage(st editor.State, script editor.ScriptStatus, flash *notify.Notification) editPage {
	idea := st.Idea
	p := editPage{
		Flash:             flash,
		Idea:              idea,
		TitleDraft:        st.TitleDraft,
		Saving:            st.Saving(),
		Tab:               st.Tab,
		TypeOptions:       options(models.ContentTypeValues, idea.Type, typeLabels),
		CreativeOptions:   options(models.CreativeStatusValues, idea.CreativeStatus, creativeLabels),
		ProductionOptions: options(models.ProductionStageValues, idea.ProductionStage, stageLabels),
		Script:            script.Value,
		Preview:           RenderMarkdown(script.Value),
		Resources:         sections(idea, models.LinksReference),
		Links:             sections(idea, models.LinksDeployment, models.LinksShoot, models.LinksEdit),
	}
	if script.LastSaved != nil {
		p.LastSaved = script.LastSaved.Format("15:04:05")
	}
	for _, t := range editor.TabValues {
		p.Tabs = append(p.Tabs, tabView{Tab: t, Label: tabLabels[t], URL: editURL(idea.ID, t), Active: t == st.Tab})
	}
	return p
}

func editURL(id string, tab editor.Tab) string {
	u := "/ideas/" + url.PathEscape(id) + "/edit"
	if tab != "" {
		u += "?tab=" + url.QueryEscape(string(tab))
	}
	return u
}
