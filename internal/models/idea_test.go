package models

import (
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestApply_StampsStrictlyLater(t *testing.T) {
	idea := SeedIdeas()[0]
	prev := idea.UpdatedAt

	// A clock behind the stored timestamp must still move UpdatedAt forward.
	out := idea.Apply(Patch{Title: Ptr("x")}, prev.Add(-time.Hour))
	if !out.UpdatedAt.After(prev) {
		t.Errorf("UpdatedAt = %v, want after %v", out.UpdatedAt, prev)
	}

	now := prev.Add(time.Minute)
	out = idea.Apply(Patch{Title: Ptr("x")}, now)
	if !out.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", out.UpdatedAt, now)
	}
}

func TestApply_KeepsIdentity(t *testing.T) {
	idea := SeedIdeas()[0]
	out := idea.Apply(Patch{Script: Ptr("new")}, time.Now())
	if out.ID != idea.ID || !out.CreatedAt.Equal(idea.CreatedAt) {
		t.Errorf("identity changed: %+v", out)
	}
	if out.Script != "new" || out.Title != idea.Title {
		t.Errorf("merge wrong: %+v", out)
	}
}

func TestApply_DoesNotAliasLinks(t *testing.T) {
	idea := SeedIdeas()[0]
	links := []string{"a", "b"}
	out := idea.Apply(LinksPatch(LinksDeployment, links), time.Now())
	links[0] = "mutated"
	if out.DeploymentLinks[0] != "a" {
		t.Errorf("patch aliased caller slice: %v", out.DeploymentLinks)
	}
	out.ReferenceLinks[0] = "mutated"
	if idea.ReferenceLinks[0] == "mutated" {
		t.Error("Apply aliased the original idea's links")
	}
}

func TestApply_EmptyTitleAllowed(t *testing.T) {
	idea := SeedIdeas()[0]
	p := Patch{Title: Ptr("")}
	if err := p.Validate(); err != nil {
		t.Fatalf("empty title on edit should validate: %v", err)
	}
	if out := idea.Apply(p, time.Now()); out.Title != "" {
		t.Errorf("title = %q", out.Title)
	}
}

func TestPatchValidate_RejectsUnknownEnums(t *testing.T) {
	cases := []Patch{
		{Type: Ptr(ContentType("mid-form"))},
		{CreativeStatus: Ptr(CreativeStatus("dreaming"))},
		{ProductionStage: Ptr(ProductionStage("lost"))},
		{Type: Ptr(ContentType(""))},
	}
	for _, p := range cases {
		if err := p.Validate(); err == nil {
			t.Errorf("expected error for %+v", p)
		}
	}
	if err := (Patch{Type: Ptr(TypeLongForm), ProductionStage: Ptr(StagePosted)}).Validate(); err != nil {
		t.Errorf("valid patch rejected: %v", err)
	}
}

func TestNewIdeaForm_TitleLength(t *testing.T) {
	f := DefaultNewIdeaForm()
	f.Title = "ab"
	err := f.Validate()
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	if verrs["title"] == nil {
		t.Errorf("expected title error, got %v", verrs)
	}

	f.Title = "abc"
	if err := f.Validate(); err != nil {
		t.Errorf("3-char title should pass: %v", err)
	}

	f.Title = ""
	if err := f.Validate(); err == nil {
		t.Error("empty title should fail")
	}
}

func TestNewIdeaForm_Enums(t *testing.T) {
	f := DefaultNewIdeaForm()
	f.Title = "Valid title"
	f.CreativeStatus = "unknown"
	if err := f.Validate(); err == nil {
		t.Error("unknown creative status should fail")
	}
}

func TestNewIdea(t *testing.T) {
	f := DefaultNewIdeaForm()
	f.Title = "Hello"
	now := time.Date(2024, 1, 2, 3, 4, 5, 6789, time.UTC)
	idea := NewIdea(f, "abc", now)
	if idea.ID != "abc" || idea.Title != "Hello" {
		t.Errorf("idea = %+v", idea)
	}
	if !idea.CreatedAt.Equal(idea.UpdatedAt) {
		t.Error("createdAt and updatedAt should match on creation")
	}
	if idea.Script != "" || len(idea.ReferenceLinks) != 0 || idea.EditFileLinks == nil {
		t.Errorf("expected empty script and non-nil empty links: %+v", idea)
	}
}

func TestParseLinkCategory(t *testing.T) {
	if c, err := ParseLinkCategory("shoot"); err != nil || c != LinksShoot {
		t.Errorf("got %q, %v", c, err)
	}
	if _, err := ParseLinkCategory("misc"); err == nil {
		t.Error("expected error for unknown category")
	}
}
