// Package models defines the domain types for Socialgram.
package models

import (
	"time"
)

// ContentType is the format of a planned piece of content.
type ContentType string

const (
	TypeShortForm ContentType = "short-form"
	TypeLongForm  ContentType = "long-form"
)

// ContentTypeValues lists every ContentType in display order.
var ContentTypeValues = []ContentType{TypeShortForm, TypeLongForm}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == TypeShortForm || t == TypeLongForm
}

// CreativeStatus is the stage of conceptual and scripting progress.
type CreativeStatus string

const (
	CreativeIdeation  CreativeStatus = "ideation"
	CreativeScripting CreativeStatus = "scripting"
	CreativeEditing   CreativeStatus = "editing"
	CreativePublished CreativeStatus = "published"
)

// CreativeStatusValues lists every CreativeStatus in pipeline order.
var CreativeStatusValues = []CreativeStatus{CreativeIdeation, CreativeScripting, CreativeEditing, CreativePublished}

// Valid reports whether s is a known creative status.
func (s CreativeStatus) Valid() bool {
	for _, v := range CreativeStatusValues {
		if s == v {
			return true
		}
	}
	return false
}

// ProductionStage is the stage of physical production progress.
type ProductionStage string

const (
	StageNotStarted   ProductionStage = "not started"
	StageShootPending ProductionStage = "shoot pending"
	StageShootDone    ProductionStage = "shoot done"
	StageEditing      ProductionStage = "editing"
	StagePosted       ProductionStage = "posted"
)

// ProductionStageValues lists every ProductionStage in pipeline order.
var ProductionStageValues = []ProductionStage{StageNotStarted, StageShootPending, StageShootDone, StageEditing, StagePosted}

// Valid reports whether s is a known production stage.
func (s ProductionStage) Valid() bool {
	for _, v := range ProductionStageValues {
		if s == v {
			return true
		}
	}
	return false
}

// ContentIdea is a planned piece of social content.
type ContentIdea struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Type            ContentType     `json:"type"`
	CreativeStatus  CreativeStatus  `json:"creativeStatus"`
	ProductionStage ProductionStage `json:"productionStage"`
	ReferenceLinks  []string        `json:"referenceLinks"`
	DeploymentLinks []string        `json:"deploymentLinks"`
	ShootFileLinks  []string        `json:"shootFileLinks"`
	EditFileLinks   []string        `json:"editFileLinks"`
	Script          string          `json:"script"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Links returns the link list for category c. Unknown categories yield nil.
func (i *ContentIdea) Links(c LinkCategory) []string {
	switch c {
	case LinksReference:
		return i.ReferenceLinks
	case LinksDeployment:
		return i.DeploymentLinks
	case LinksShoot:
		return i.ShootFileLinks
	case LinksEdit:
		return i.EditFileLinks
	}
	return nil
}

// Clone returns a deep copy so callers can mutate link lists freely.
func (i ContentIdea) Clone() ContentIdea {
	i.ReferenceLinks = cloneLinks(i.ReferenceLinks)
	i.DeploymentLinks = cloneLinks(i.DeploymentLinks)
	i.ShootFileLinks = cloneLinks(i.ShootFileLinks)
	i.EditFileLinks = cloneLinks(i.EditFileLinks)
	return i
}

// Normalize replaces nil link lists with empty ones.
func (i *ContentIdea) Normalize() {
	i.ReferenceLinks = nonNil(i.ReferenceLinks)
	i.DeploymentLinks = nonNil(i.DeploymentLinks)
	i.ShootFileLinks = nonNil(i.ShootFileLinks)
	i.EditFileLinks = nonNil(i.EditFileLinks)
}

// Apply merges p into a copy of i and stamps a fresh UpdatedAt.
// ID and CreatedAt are never touched.
func (i ContentIdea) Apply(p Patch, now time.Time) ContentIdea {
	out := i.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.CreativeStatus != nil {
		out.CreativeStatus = *p.CreativeStatus
	}
	if p.ProductionStage != nil {
		out.ProductionStage = *p.ProductionStage
	}
	if p.Script != nil {
		out.Script = *p.Script
	}
	if p.ReferenceLinks != nil {
		out.ReferenceLinks = cloneLinks(*p.ReferenceLinks)
	}
	if p.DeploymentLinks != nil {
		out.DeploymentLinks = cloneLinks(*p.DeploymentLinks)
	}
	if p.ShootFileLinks != nil {
		out.ShootFileLinks = cloneLinks(*p.ShootFileLinks)
	}
	if p.EditFileLinks != nil {
		out.EditFileLinks = cloneLinks(*p.EditFileLinks)
	}
	out.Normalize()
	out.UpdatedAt = Stamp(i.UpdatedAt, now)
	return out
}

// Stamp returns the UpdatedAt value to record for a mutation happening at now.
// The result is always strictly later than prev.
func Stamp(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		return prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

func cloneLinks(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
