//go:build !sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFallback_WildcardsAreLiteral(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	plain := testIdea("plain", "Growth tips", now)
	plain.Script = "grow by 50 followers"
	pct := testIdea("pct", "Growth tips", now)
	pct.Script = "grow by 50% in a month"
	_ = db.UpsertIdea(plain, "1")
	_ = db.UpsertIdea(pct, "2")

	results, err := db.Search("50%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "pct" {
		t.Errorf("results = %+v, want only pct", results)
	}
}
