// Package codec converts content ideas to and from vault files: YAML
// frontmatter for the metadata and the script as the Markdown body.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/socialgram/internal/models"
)

// Ext is the file extension of idea files.
const Ext = ".md"

const delim = "---"

// ErrNoFrontmatter is returned when a file does not start with a frontmatter block.
var ErrNoFrontmatter = errors.New("codec: missing frontmatter")

type frontmatter struct {
	ID              string                 `yaml:"id"`
	Title           string                 `yaml:"title"`
	Type            models.ContentType     `yaml:"type"`
	CreativeStatus  models.CreativeStatus  `yaml:"creative_status"`
	ProductionStage models.ProductionStage `yaml:"production_stage"`
	ReferenceLinks  []string               `yaml:"reference_links"`
	DeploymentLinks []string               `yaml:"deployment_links"`
	ShootFileLinks  []string               `yaml:"shoot_file_links"`
	EditFileLinks   []string               `yaml:"edit_file_links"`
	CreatedAt       time.Time              `yaml:"created_at"`
	UpdatedAt       time.Time              `yaml:"updated_at"`
}

// FileName returns the vault-relative file name for an idea id.
func FileName(id string) string {
	return id + Ext
}

// IDFromFileName returns the idea id stored in name, and false if name is
// not an idea file.
func IDFromFileName(name string) (string, bool) {
	if !strings.HasSuffix(name, Ext) || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	id := strings.TrimSuffix(name, Ext)
	return id, id != ""
}

// Encode renders idea as a vault file.
func Encode(idea models.ContentIdea) ([]byte, error) {
	idea.Normalize()
	fm := frontmatter{
		ID:              idea.ID,
		Title:           idea.Title,
		Type:            idea.Type,
		CreativeStatus:  idea.CreativeStatus,
		ProductionStage: idea.ProductionStage,
		ReferenceLinks:  idea.ReferenceLinks,
		DeploymentLinks: idea.DeploymentLinks,
		ShootFileLinks:  idea.ShootFileLinks,
		EditFileLinks:   idea.EditFileLinks,
		CreatedAt:       idea.CreatedAt.UTC(),
		UpdatedAt:       idea.UpdatedAt.UTC(),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(head)
	buf.WriteString(delim + "\n")
	buf.WriteString(idea.Script)
	return buf.Bytes(), nil
}

// Decode parses a vault file. The script is everything after the closing
// delimiter line, byte for byte.
func Decode(data []byte) (models.ContentIdea, error) {
	head, body, err := split(data)
	if err != nil {
		return models.ContentIdea{}, err
	}
	var fm frontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return models.ContentIdea{}, fmt.Errorf("codec: parse frontmatter: %w", err)
	}
	if fm.ID == "" {
		return models.ContentIdea{}, fmt.Errorf("codec: frontmatter has no id")
	}
	idea := models.ContentIdea{
		ID:              fm.ID,
		Title:           fm.Title,
		Type:            fm.Type,
		CreativeStatus:  fm.CreativeStatus,
		ProductionStage: fm.ProductionStage,
		ReferenceLinks:  fm.ReferenceLinks,
		DeploymentLinks: fm.DeploymentLinks,
		ShootFileLinks:  fm.ShootFileLinks,
		EditFileLinks:   fm.EditFileLinks,
		Script:          body,
		CreatedAt:       fm.CreatedAt.UTC(),
		UpdatedAt:       fm.UpdatedAt.UTC(),
	}
	idea.Normalize()
	return idea, nil
}

// split separates the frontmatter block (between leading --- lines) from the body.
func split(data []byte) ([]byte, string, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", ErrNoFrontmatter
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim+"\n"))
	if idx < 0 {
		if bytes.HasSuffix(rest, []byte("\n"+delim)) {
			return rest[:len(rest)-len(delim)-1], "", nil
		}
		return nil, "", ErrNoFrontmatter
	}
	head := rest[:idx]
	body := rest[idx+len(delim)+2:]
	return head, string(body), nil
}
