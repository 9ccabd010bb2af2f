package notify

import "testing"

func TestMulti_FansOutInOrder(t *testing.T) {
	var a, b Recorder
	n := Multi(&a, nil, &b)
	n.Notify(Saved)
	n.Notify(SaveFailed)

	for _, r := range []*Recorder{&a, &b} {
		got := r.Titles()
		if len(got) != 2 || got[0] != "Changes saved" || got[1] != "Error saving changes" {
			t.Errorf("titles = %v", got)
		}
	}
}

func TestVariants(t *testing.T) {
	for _, n := range []Notification{SaveFailed, NotFound, LoadFailed, FetchFailed, DeleteFail, CreateFail} {
		if n.Variant != VariantDestructive {
			t.Errorf("%q should be destructive", n.Title)
		}
	}
	for _, n := range []Notification{Saved, Deleted, Created} {
		if n.Variant != VariantDefault {
			t.Errorf("%q should be default", n.Title)
		}
	}
}

func TestRecorderReset(t *testing.T) {
	var r Recorder
	r.Notify(Created)
	r.Reset()
	if len(r.All()) != 0 {
		t.Error("expected empty recorder after Reset")
	}
}
