package canvas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/soart-backend/internal/data/repos/testutil"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRepo(t *testing.T) (CanvasRepo, dbctx.Context, *stepClock) {
	t.Helper()
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := NewCanvasRepoWithClock(testutil.DB(t), testutil.Logger(t), clock.Now)
	return repo, dbctx.New(context.Background()), clock
}

func TestCanvasRepoCreateAndGet(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	if _, err := repo.Create(dbc, "c1", "Demo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.Get(dbc, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get: expected canvas, got nil")
	}
	if got.Name != "Demo" || string(got.Data) != "{}" || got.Thumbnail != "" {
		t.Fatalf("Get: unexpected canvas: %+v", got)
	}
	if got.UpdatedAt == 0 {
		t.Fatal("Get: updated_at not set")
	}

	_, err = repo.Create(dbc, "c1", "Again")
	if !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("Create duplicate: expected conflict, got %v", err)
	}
}

func TestCanvasRepoGetMissing(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	got, err := repo.Get(dbc, "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get: expected nil, got %+v", got)
	}
}

func TestCanvasRepoSaveRoundTrip(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	created, err := repo.Create(dbc, "c1", "Demo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	payload := []byte(`{"shapes":[{"id":"s1","x":1.5,"label":"ü"}],"zoom":2}`)
	if err := repo.Save(dbc, "c1", payload, "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Get(dbc, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Data) != string(payload) {
		t.Fatalf("Save: data mismatch: got=%s want=%s", got.Data, payload)
	}
	if got.Thumbnail != "data:image/png;base64,AAAA" {
		t.Fatalf("Save: thumbnail mismatch: %q", got.Thumbnail)
	}
	if got.UpdatedAt <= created.UpdatedAt {
		t.Fatalf("Save: updated_at not advanced: before=%v after=%v", created.UpdatedAt, got.UpdatedAt)
	}

	err = repo.Save(dbc, "missing", payload, "")
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("Save missing: expected not found, got %v", err)
	}
}

func TestCanvasRepoDuplicateDoesNotAlias(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	if _, err := repo.Create(dbc, "src", "Source"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Save(dbc, "src", []byte(`{"v":1}`), "thumb-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Duplicate(dbc, "src", "copy", "Source (copy)"); err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if err := repo.Save(dbc, "src", []byte(`{"v":2}`), "thumb-2"); err != nil {
		t.Fatalf("Save after duplicate: %v", err)
	}

	dup, err := repo.Get(dbc, "copy")
	if err != nil || dup == nil {
		t.Fatalf("Get copy: %v %+v", err, dup)
	}
	if dup.Name != "Source (copy)" || string(dup.Data) != `{"v":1}` || dup.Thumbnail != "thumb-1" {
		t.Fatalf("Duplicate: unexpected copy: %+v", dup)
	}

	_, err = repo.Duplicate(dbc, "ghost", "x", "x")
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("Duplicate missing source: expected not found, got %v", err)
	}
	_, err = repo.Duplicate(dbc, "src", "copy", "again")
	if !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("Duplicate onto existing id: expected conflict, got %v", err)
	}
}

func TestCanvasRepoListOrderedByUpdatedAtDesc(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := repo.Create(dbc, id, id); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := repo.Save(dbc, "a", []byte(`{}`), ""); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a", "c", "b"}
	if len(list) != len(want) {
		t.Fatalf("List: expected %d rows, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("List[%d]: got=%s want=%s (%+v)", i, list[i].ID, id, list)
		}
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].UpdatedAt < list[i].UpdatedAt {
			t.Fatalf("List: not sorted desc at %d: %+v", i, list)
		}
	}
}

func TestCanvasRepoRenameKeepsUpdatedAt(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	created, err := repo.Create(dbc, "c1", "Old")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Rename(dbc, "c1", "X"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, err := repo.Get(dbc, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "X" {
		t.Fatalf("Rename: name=%q", got.Name)
	}
	if got.UpdatedAt != created.UpdatedAt {
		t.Fatalf("Rename: updated_at changed: before=%v after=%v", created.UpdatedAt, got.UpdatedAt)
	}

	if err := repo.Rename(dbc, "missing", "X"); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("Rename missing: expected not found, got %v", err)
	}
}

func TestCanvasRepoDeleteIsIdempotent(t *testing.T) {
	repo, dbc, _ := newRepo(t)

	if _, err := repo.Create(dbc, "c1", "Demo"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(dbc, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.Get(dbc, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get after delete: expected nil, got %+v", got)
	}
	if err := repo.Delete(dbc, "c1"); err != nil {
		t.Fatalf("Delete again: %v", err)
	}
}
