package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/models"
	"github.com/starford/socialgram/internal/notify"
	"github.com/starford/socialgram/internal/repository"
)

// spyRepo records updates and can be told to fail.
type spyRepo struct {
	repository.Repository

	mu         sync.Mutex
	patches    []models.Patch
	failUpdate error
	failDelete error
	failFetch  error
}

func newSpy() *spyRepo {
	return &spyRepo{Repository: repository.NewMemory(repository.WithSeed(models.SeedIdeas()))}
}

func (r *spyRepo) FetchByID(ctx context.Context, id string) (models.ContentIdea, error) {
	r.mu.Lock()
	err := r.failFetch
	r.mu.Unlock()
	if err != nil {
		return models.ContentIdea{}, err
	}
	return r.Repository.FetchByID(ctx, id)
}

func (r *spyRepo) Update(ctx context.Context, id string, p models.Patch) (models.ContentIdea, error) {
	r.mu.Lock()
	r.patches = append(r.patches, p)
	err := r.failUpdate
	r.mu.Unlock()
	if err != nil {
		return models.ContentIdea{}, err
	}
	return r.Repository.Update(ctx, id, p)
}

func (r *spyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	err := r.failDelete
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.Repository.Delete(ctx, id)
}

func (r *spyRepo) updates() []models.Patch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Patch(nil), r.patches...)
}

func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func openSession(t *testing.T, repo repository.Repository, rec *notify.Recorder, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithNotifier(rec)}, opts...)
	s := NewSession("1", repo, opts...)
	t.Cleanup(s.Close)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec.Reset()
	return s
}

func TestReduce_PureTransitions(t *testing.T) {
	idea := models.SeedIdeas()[0]
	s0 := InitialState()
	s1 := Reduce(s0, Loaded{Idea: idea})
	if s0.Phase != PhaseLoading || s1.Phase != PhaseFound || s1.TitleDraft != idea.Title {
		t.Fatalf("load transition: %+v -> %+v", s0, s1)
	}

	s2 := Reduce(s1, TitleEdited{Title: "draft"})
	if s1.TitleDraft != idea.Title || s2.TitleDraft != "draft" {
		t.Error("TitleEdited mutated its input or was ignored")
	}

	s3 := Reduce(s2, SaveStarted{})
	if !s3.Saving() || s2.Saving() {
		t.Error("SaveStarted should only affect the new state")
	}

	updated := idea.Apply(models.Patch{Script: models.Ptr("x")}, time.Now())
	s4 := Reduce(s3, SaveSucceeded{Idea: updated})
	if s4.Saving() || s4.Idea.Script != "x" || s4.TitleDraft != "draft" {
		t.Errorf("after success: %+v", s4)
	}

	s5 := Reduce(Reduce(s4, SaveStarted{}), SaveFailed{Err: errors.New("boom")})
	if s5.Saving() || s5.LastError != "boom" || s5.Idea.Script != "x" {
		t.Errorf("after failure: %+v", s5)
	}

	if got := Reduce(s5, TabSelected{Tab: TabLinks}); got.Tab != TabLinks {
		t.Errorf("tab = %q", got.Tab)
	}
	if got := Reduce(s5, Deleted{}); got.Phase != PhaseDeleted {
		t.Errorf("phase = %q", got.Phase)
	}
}

func TestReduce_TitleIgnoredUntilFound(t *testing.T) {
	s := Reduce(InitialState(), TitleEdited{Title: "early"})
	if s.TitleDraft != "" {
		t.Errorf("draft = %q", s.TitleDraft)
	}
}

func TestParseTab(t *testing.T) {
	if ParseTab("resources") != TabResources || ParseTab("bogus") != TabScript || ParseTab("") != TabScript {
		t.Error("ParseTab mismatch")
	}
}

func TestLoad_NotFound(t *testing.T) {
	rec := &notify.Recorder{}
	s := NewSession("missing", newSpy(), WithNotifier(rec))
	st, err := s.Load(context.Background())
	if !errors.Is(err, apperr.ErrNotFound) || st.Phase != PhaseNotFound {
		t.Fatalf("state = %+v, err = %v", st, err)
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Idea not found" {
		t.Errorf("notifications = %v", got)
	}
	if _, err := s.CommitTitle(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("edit on missing idea: %v", err)
	}
}

func TestLoad_Failure(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	repo.failFetch = errors.New("offline")
	s := NewSession("1", repo, WithNotifier(rec))
	st, err := s.Load(context.Background())
	if err == nil || st.Phase != PhaseFailed {
		t.Fatalf("state = %+v, err = %v", st, err)
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Error fetching idea" {
		t.Errorf("notifications = %v", got)
	}
}

func TestCommitTitle_EmptyTitleStillSaved(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec)
	if s.State().Idea.Title != "Instagram Reel about UI Design" {
		t.Fatalf("unexpected seed title %q", s.State().Idea.Title)
	}

	s.EditTitle("")
	if len(repo.updates()) != 0 {
		t.Fatal("typing must not persist")
	}
	idea, err := s.CommitTitle(context.Background())
	if err != nil {
		t.Fatalf("CommitTitle: %v", err)
	}

	ups := repo.updates()
	if len(ups) != 1 || ups[0].Title == nil || *ups[0].Title != "" {
		t.Fatalf("updates = %+v", ups)
	}
	if idea.Title != "" {
		t.Errorf("stored title = %q", idea.Title)
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Changes saved" {
		t.Errorf("notifications = %v", got)
	}
}

func TestUpdate_StrictlyLaterUpdatedAt(t *testing.T) {
	rec := &notify.Recorder{}
	frozen := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := repository.NewMemory(repository.WithSeed(models.SeedIdeas()),
		repository.WithClock(func() time.Time { return frozen }))
	s := openSession(t, repo, rec)

	prev := s.State().Idea.UpdatedAt
	for _, step := range []func() (models.ContentIdea, error){
		func() (models.ContentIdea, error) { return s.SetType(context.Background(), models.TypeLongForm) },
		func() (models.ContentIdea, error) {
			return s.SetCreativeStatus(context.Background(), models.CreativePublished)
		},
		func() (models.ContentIdea, error) { return s.SetProductionStage(context.Background(), models.StagePosted) },
		func() (models.ContentIdea, error) {
			return s.AddLink(context.Background(), models.LinksDeployment, " https://post.example ")
		},
	} {
		idea, err := step()
		if err != nil {
			t.Fatal(err)
		}
		if !idea.UpdatedAt.After(prev) {
			t.Fatalf("updatedAt %v not after %v", idea.UpdatedAt, prev)
		}
		prev = idea.UpdatedAt
	}
	st := s.State()
	if st.Idea.Type != models.TypeLongForm || st.Idea.DeploymentLinks[0] != "https://post.example" {
		t.Errorf("state = %+v", st.Idea)
	}
}

func TestUpdate_InvalidEnumNeverReachesRepository(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec)

	_, err := s.SetType(context.Background(), models.ContentType("mid-form"))
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if len(repo.updates()) != 0 || len(rec.All()) != 0 {
		t.Error("validation failure should not reach the repository or notify")
	}
}

func TestUpdate_FailureNotifiesAndKeepsState(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec)
	before := s.State().Idea

	repo.failUpdate = errors.New("db down")
	if _, err := s.SetCreativeStatus(context.Background(), models.CreativeEditing); err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if st.Idea.CreativeStatus != before.CreativeStatus || st.Saving() || st.LastError == "" {
		t.Errorf("state after failure = %+v", st)
	}
	got := rec.All()
	if len(got) != 1 || got[0].Title != "Error saving changes" || got[0].Variant != notify.VariantDestructive {
		t.Errorf("notifications = %+v", got)
	}
	if len(repo.updates()) != 1 {
		t.Error("failed updates must not be retried")
	}
}

func TestLinks_AddBlankAndRemoveOutOfRangeAreNoops(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec)

	if _, err := s.AddLink(context.Background(), models.LinksReference, "   "); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveLink(context.Background(), models.LinksReference, 9); err != nil {
		t.Fatal(err)
	}
	if len(repo.updates()) != 0 {
		t.Errorf("no-ops issued updates: %+v", repo.updates())
	}

	idea, err := s.RemoveLink(context.Background(), models.LinksReference, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(idea.ReferenceLinks) != 0 {
		t.Errorf("links = %v", idea.ReferenceLinks)
	}
}

func TestEditScript_RapidEditsSaveOnce(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec, WithAutosaveIdle(80*time.Millisecond))

	for _, v := range []string{"a", "ab", "abc", "abcd", "final script"} {
		if err := s.EditScript(v); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !s.Script().Pending {
		t.Error("expected a pending save")
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return len(repo.updates()) > 0
	}, "autosave never fired")
	time.Sleep(200 * time.Millisecond)

	ups := repo.updates()
	if len(ups) != 1 || ups[0].Script == nil || *ups[0].Script != "final script" {
		t.Fatalf("updates = %+v", ups)
	}
	if s.State().Idea.Script != "final script" {
		t.Errorf("script = %q", s.State().Idea.Script)
	}
	st := s.Script()
	if st.Pending || st.LastSaved == nil {
		t.Errorf("script status = %+v", st)
	}
}

func TestFlushScript(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec, WithAutosaveIdle(time.Hour))

	_ = s.EditScript("flushed")
	if !s.FlushScript() {
		t.Fatal("expected flush to save")
	}
	if ups := repo.updates(); len(ups) != 1 || *ups[0].Script != "flushed" {
		t.Errorf("updates = %+v", ups)
	}
	if s.FlushScript() {
		t.Error("second flush should be a no-op")
	}
}

func TestEditScript_UnchangedValueDoesNotSave(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec, WithAutosaveIdle(time.Hour))

	_ = s.EditScript(s.State().Idea.Script)
	if s.FlushScript() {
		t.Error("unchanged script should not be saved")
	}
}

func TestDelete(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec)

	ok, err := s.Delete(context.Background(), false)
	if ok || err != nil {
		t.Fatalf("unconfirmed delete: %v, %v", ok, err)
	}
	if _, err := repo.FetchByID(context.Background(), "1"); err != nil {
		t.Fatal("unconfirmed delete removed the idea")
	}

	repo.failDelete = errors.New("locked")
	if _, err := s.Delete(context.Background(), true); err == nil {
		t.Fatal("expected delete failure")
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Error deleting idea" {
		t.Errorf("notifications = %v", got)
	}

	repo.failDelete = nil
	rec.Reset()
	ok, err = s.Delete(context.Background(), true)
	if !ok || err != nil {
		t.Fatalf("delete: %v, %v", ok, err)
	}
	if s.State().Phase != PhaseDeleted {
		t.Errorf("phase = %q", s.State().Phase)
	}
	if got := rec.Titles(); len(got) != 1 || got[0] != "Idea deleted" {
		t.Errorf("notifications = %v", got)
	}
	if _, err := repo.FetchByID(context.Background(), "1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("idea still present: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	repo := newSpy()
	reg := NewRegistry(repo)
	defer reg.Close()

	a, err := reg.Open(context.Background(), "2")
	if err != nil {
		t.Fatal(err)
	}
	b, err := reg.Open(context.Background(), "2")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the same session for the same id")
	}
	if got, ok := reg.Get("2"); !ok || got != a {
		t.Error("Get did not return the open session")
	}

	if _, err := reg.Open(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("missing ideas should not be cached, len = %d", reg.Len())
	}

	reg.Forget("2")
	if _, ok := reg.Get("2"); ok {
		t.Error("session survived Forget")
	}
}

func TestRegistry_CloseFlushesDrafts(t *testing.T) {
	repo := newSpy()
	reg := NewRegistry(repo, WithAutosaveIdle(time.Hour))

	s, err := reg.Open(context.Background(), "3")
	if err != nil {
		t.Fatal(err)
	}
	_ = s.EditScript("draft before shutdown")
	reg.Close()

	idea, _ := repo.FetchByID(context.Background(), "3")
	if idea.Script != "draft before shutdown" {
		t.Errorf("script = %q", idea.Script)
	}
}

func TestRegistry_DropsFailedLoads(t *testing.T) {
	repo := newSpy()
	reg := NewRegistry(repo)
	defer reg.Close()

	repo.failFetch = errors.New("db down")
	if _, err := reg.Open(context.Background(), "1"); err == nil {
		t.Fatal("expected load error")
	}
	if reg.Len() != 0 {
		t.Errorf("failed session kept, len = %d", reg.Len())
	}

	repo.failFetch = nil
	if _, err := reg.Open(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Get("1"); !ok {
		t.Error("session not usable after a successful retry")
	}
}

func TestRegistry_SweepClosesIdleSessions(t *testing.T) {
	repo := newSpy()
	reg := NewRegistry(repo, WithAutosaveIdle(time.Hour))
	defer reg.Close()

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return clock }

	old, err := reg.Open(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	_ = old.EditScript("kept on eviction")

	clock = clock.Add(20 * time.Minute)
	if _, err := reg.Open(context.Background(), "2"); err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(15 * time.Minute)
	if n := reg.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if _, ok := reg.Get("1"); ok {
		t.Error("idle session survived Sweep")
	}
	if _, ok := reg.Get("2"); !ok {
		t.Error("recent session evicted")
	}
	idea, _ := repo.FetchByID(context.Background(), "1")
	if idea.Script != "kept on eviction" {
		t.Errorf("pending draft lost on eviction: %q", idea.Script)
	}
}

func TestAddLink_KeepsLinksSavedElsewhere(t *testing.T) {
	rec := &notify.Recorder{}
	repo := newSpy()
	s := openSession(t, repo, rec)
	ctx := context.Background()

	stored, _ := repo.FetchByID(ctx, "1")
	external := append(stored.ReferenceLinks, "https://external.example")
	if _, err := repo.Repository.Update(ctx, "1", models.LinksPatch(models.LinksReference, external)); err != nil {
		t.Fatal(err)
	}

	idea, err := s.AddLink(ctx, models.LinksReference, "https://session.example")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://instagram.com/design", "https://external.example", "https://session.example"}
	if len(idea.ReferenceLinks) != len(want) {
		t.Fatalf("links = %v, want %v", idea.ReferenceLinks, want)
	}
	for i := range want {
		if idea.ReferenceLinks[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, idea.ReferenceLinks[i], want[i])
		}
	}

	idea, err = s.RemoveLink(ctx, models.LinksReference, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(idea.ReferenceLinks) != 2 || idea.ReferenceLinks[0] != "https://external.example" {
		t.Errorf("after remove = %v", idea.ReferenceLinks)
	}
}

func TestNotificationsCarryIdeaID(t *testing.T) {
	rec := &notify.Recorder{}
	s := openSession(t, newSpy(), rec)
	if _, err := s.SetType(context.Background(), models.TypeLongForm); err != nil {
		t.Fatal(err)
	}
	got := rec.All()
	if len(got) != 1 || got[0].IdeaID != "1" {
		t.Errorf("notifications = %+v", got)
	}
}

func TestReduce_RefreshedKeepsDraft(t *testing.T) {
	idea := models.SeedIdeas()[0]
	s := Reduce(Reduce(InitialState(), Loaded{Idea: idea}), TitleEdited{Title: "draft"})

	fresh := idea.Clone()
	fresh.Title = "Renamed elsewhere"
	fresh.ReferenceLinks = []string{"https://a.example"}
	next := Reduce(s, Refreshed{Idea: fresh})
	if next.TitleDraft != "draft" || next.Idea.Title != "Renamed elsewhere" || len(next.Idea.ReferenceLinks) != 1 {
		t.Errorf("refreshed = %+v", next)
	}
	if next.Saving() {
		t.Error("refresh must not touch the saving indicator")
	}
}
