package linklist

import (
	"reflect"
	"testing"
)

func TestAdd_AppendsTrimmed(t *testing.T) {
	seqs := [][]string{nil, {}, {"a"}, {"a", "b", "a"}}
	for _, links := range seqs {
		got, ok := Add(links, "  https://x.test  ")
		if !ok {
			t.Fatalf("Add(%v) reported no-op", links)
		}
		want := append(append([]string{}, links...), "https://x.test")
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Add(%v) = %v, want %v", links, got, want)
		}
	}
}

func TestAdd_EmptyIsNoop(t *testing.T) {
	links := []string{"a", "b"}
	for _, in := range []string{"", "   ", "\t\n"} {
		got, ok := Add(links, in)
		if ok {
			t.Errorf("Add(%q) should be a no-op", in)
		}
		if !reflect.DeepEqual(got, links) {
			t.Errorf("Add(%q) = %v", in, got)
		}
	}
}

func TestAdd_AllowsDuplicates(t *testing.T) {
	got, _ := Add([]string{"a"}, "a")
	if !reflect.DeepEqual(got, []string{"a", "a"}) {
		t.Errorf("got %v", got)
	}
}

func TestAdd_DoesNotAlias(t *testing.T) {
	backing := make([]string, 1, 4)
	backing[0] = "a"
	got, _ := Add(backing, "b")
	got[0] = "changed"
	if backing[0] != "a" {
		t.Error("Add wrote through to the caller's backing array")
	}
}

func TestRemove_EveryIndex(t *testing.T) {
	links := []string{"a", "b", "c", "b"}
	for i := range links {
		got, ok := Remove(links, i)
		if !ok {
			t.Fatalf("Remove(%d) failed", i)
		}
		want := append(append([]string{}, links[:i]...), links[i+1:]...)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Remove(%d) = %v, want %v", i, got, want)
		}
	}
	if !reflect.DeepEqual(links, []string{"a", "b", "c", "b"}) {
		t.Errorf("input mutated: %v", links)
	}
}

func TestRemove_OutOfRange(t *testing.T) {
	links := []string{"a"}
	for _, i := range []int{-1, 1, 5} {
		if got, ok := Remove(links, i); ok || !reflect.DeepEqual(got, links) {
			t.Errorf("Remove(%d) = %v, %v", i, got, ok)
		}
	}
}

func TestList_NotifiesParent(t *testing.T) {
	var calls [][]string
	l := New("Reference Links", []string{"a"}, func(links []string) {
		calls = append(calls, links)
	})

	l.SetInput(" ")
	if l.Add() {
		t.Error("blank input should not add")
	}
	if len(calls) != 0 {
		t.Fatalf("onChange called on no-op: %v", calls)
	}

	l.SetInput(" b ")
	if !l.Add() {
		t.Fatal("Add failed")
	}
	if l.Input() != "" {
		t.Errorf("input not cleared: %q", l.Input())
	}
	if !l.Remove(0) {
		t.Fatal("Remove failed")
	}

	want := [][]string{{"a", "b"}, {"b"}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}
