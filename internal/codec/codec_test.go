package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/socialgram/internal/models"
)

func TestEncodeDecode(t *testing.T) {
	for _, idea := range models.SeedIdeas() {
		data, err := Encode(idea)
		if err != nil {
			t.Fatalf("Encode %s: %v", idea.ID, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode %s: %v", idea.ID, err)
		}
		if !reflect.DeepEqual(got, idea) {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, idea)
		}
	}
}

func TestEncode_Layout(t *testing.T) {
	idea := models.SeedIdeas()[2]
	data, _ := Encode(idea)
	s := string(data)
	if !strings.HasPrefix(s, "---\nid: \"3\"\n") {
		t.Errorf("unexpected head: %q", s[:20])
	}
	if !strings.Contains(s, "production_stage: shoot done\n") {
		t.Errorf("missing production stage in %q", s)
	}
	if !strings.HasSuffix(s, "---\n"+idea.Script) {
		t.Error("script should follow the closing delimiter verbatim")
	}
}

func TestDecode_ScriptWithDelimiterLines(t *testing.T) {
	idea := models.SeedIdeas()[0]
	idea.Script = "intro\n---\nhorizontal rule above\n"
	data, _ := Encode(idea)
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Script != idea.Script {
		t.Errorf("script = %q", got.Script)
	}
}

func TestDecode_EmptyScript(t *testing.T) {
	idea := models.SeedIdeas()[0]
	idea.Script = ""
	data, _ := Encode(idea)
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Script != "" {
		t.Errorf("script = %q", got.Script)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"no frontmatter": "# Just markdown\n",
		"unterminated":   "---\nid: x\n",
		"no id":          "---\ntitle: x\n---\nbody",
		"bad yaml":       "---\n: : {{{\n---\nbody",
	}
	for name, in := range cases {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Decode([]byte("plain")); !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("err = %v, want ErrNoFrontmatter", err)
	}
}

func TestFileNames(t *testing.T) {
	if FileName("abc") != "abc.md" {
		t.Error("FileName")
	}
	if id, ok := IDFromFileName("abc.md"); !ok || id != "abc" {
		t.Errorf("IDFromFileName = %q, %v", id, ok)
	}
	for _, bad := range []string{"abc.txt", ".md", "sub/abc.md"} {
		if _, ok := IDFromFileName(bad); ok {
			t.Errorf("IDFromFileName(%q) should fail", bad)
		}
	}
}
