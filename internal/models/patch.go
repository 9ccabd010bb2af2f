package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LinkCategory names one of the four link lists attached to an idea.
type LinkCategory string

const (
	LinksReference  LinkCategory = "reference"
	LinksDeployment LinkCategory = "deployment"
	LinksShoot      LinkCategory = "shoot"
	LinksEdit       LinkCategory = "edit"
)

// LinkCategoryValues lists every LinkCategory in the order the editor shows them.
var LinkCategoryValues = []LinkCategory{LinksReference, LinksDeployment, LinksShoot, LinksEdit}

// ParseLinkCategory converts s into a LinkCategory.
func ParseLinkCategory(s string) (LinkCategory, error) {
	c := LinkCategory(s)
	for _, v := range LinkCategoryValues {
		if c == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown link category %q", s)
}

// Patch is a partial update of a ContentIdea. Nil fields are left unchanged.
type Patch struct {
	Title           *string          `json:"title,omitempty"`
	Type            *ContentType     `json:"type,omitempty"`
	CreativeStatus  *CreativeStatus  `json:"creativeStatus,omitempty"`
	ProductionStage *ProductionStage `json:"productionStage,omitempty"`
	Script          *string          `json:"script,omitempty"`
	ReferenceLinks  *[]string        `json:"referenceLinks,omitempty"`
	DeploymentLinks *[]string        `json:"deploymentLinks,omitempty"`
	ShootFileLinks  *[]string        `json:"shootFileLinks,omitempty"`
	EditFileLinks   *[]string        `json:"editFileLinks,omitempty"`
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Type == nil && p.CreativeStatus == nil && p.ProductionStage == nil &&
		p.Script == nil && p.ReferenceLinks == nil && p.DeploymentLinks == nil &&
		p.ShootFileLinks == nil && p.EditFileLinks == nil
}

// Validate checks enum fields only. Titles are not length-checked on edit,
// unlike NewIdeaForm.
func (p Patch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.NilOrNotEmpty, validation.In(anySlice(ContentTypeValues)...)),
		validation.Field(&p.CreativeStatus, validation.NilOrNotEmpty, validation.In(anySlice(CreativeStatusValues)...)),
		validation.Field(&p.ProductionStage, validation.NilOrNotEmpty, validation.In(anySlice(ProductionStageValues)...)),
	)
}

// LinksPatch returns a Patch replacing the list for category c.
func LinksPatch(c LinkCategory, links []string) Patch {
	l := cloneLinks(links)
	var p Patch
	switch c {
	case LinksReference:
		p.ReferenceLinks = &l
	case LinksDeployment:
		p.DeploymentLinks = &l
	case LinksShoot:
		p.ShootFileLinks = &l
	case LinksEdit:
		p.EditFileLinks = &l
	}
	return p
}

func anySlice[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
