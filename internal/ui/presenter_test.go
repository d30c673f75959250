package ui_test

import (
	"testing"
	"time"

	"github.com/csg33k/code-portal/internal/domain"
	"github.com/csg33k/code-portal/internal/ui"
	"github.com/csg33k/code-portal/internal/ui/uitest"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNotify_SecondCallReplacesFirst(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{NoticeVisible: time.Hour})
	defer p.Close()

	first := p.Notify("first", domain.NoticeSuccess)
	second := p.Notify("second", domain.NoticeError)

	notices := rec.Notices()
	if len(notices) != 1 {
		t.Fatalf("want exactly 1 notice on the page, got %d", len(notices))
	}
	if notices[0].ID != second.ID || notices[0].Message != "second" {
		t.Errorf("want second notice visible, got %+v", notices[0])
	}
	if first.ID == second.ID {
		t.Error("notices must get distinct ids")
	}
	cur, ok := p.Current()
	if !ok || cur.ID != second.ID {
		t.Errorf("Current: want %s, got %+v (ok=%v)", second.ID, cur, ok)
	}
}

func TestNotify_ManyRapidCalls(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{NoticeVisible: time.Hour})
	defer p.Close()

	for i := 0; i < 50; i++ {
		p.Notify("again", domain.NoticeError)
	}
	if got := len(rec.Notices()); got != 1 {
		t.Fatalf("want 1 notice, got %d", got)
	}
	mounts, removals := rec.Counts()
	if mounts != 50 || removals != 49 {
		t.Errorf("want 50 mounts / 49 removals, got %d / %d", mounts, removals)
	}
}

func TestNotify_DismissesAfterVisibleAndExit(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{
		NoticeVisible: 20 * time.Millisecond,
		NoticeExit:    20 * time.Millisecond,
	})
	defer p.Close()

	n := p.Notify("saved", domain.NoticeSuccess)
	if rec.Faded(n.ID) {
		t.Fatal("notice must not fade immediately")
	}
	waitFor(t, "fade", func() bool { return rec.Faded(n.ID) })
	waitFor(t, "removal", func() bool { return len(rec.Notices()) == 0 })
	if _, ok := p.Current(); ok {
		t.Error("Current should be empty after removal")
	}
}

func TestNotify_OldTimerDoesNotRemoveNewNotice(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{
		NoticeVisible: 100 * time.Millisecond,
		NoticeExit:    10 * time.Millisecond,
	})
	defer p.Close()

	p.Notify("old", domain.NoticeSuccess)
	time.Sleep(50 * time.Millisecond)
	fresh := p.Notify("fresh", domain.NoticeSuccess)

	// Past the old notice's full lifetime but inside the fresh one's.
	time.Sleep(70 * time.Millisecond)
	last, ok := rec.Last()
	if !ok || last.ID != fresh.ID {
		t.Fatalf("fresh notice should still be mounted, got %+v (ok=%v)", last, ok)
	}
}

func TestLoading_LastCallerWins(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{})
	defer p.Close()

	p.ShowLoading()
	p.ShowLoading()
	p.HideLoading()
	if p.Loading() || rec.Loading() {
		t.Fatal("one hide must hide the overlay regardless of how many shows preceded it")
	}
}

func TestHideLoadingAfter(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{})
	defer p.Close()

	p.ShowLoading()
	p.HideLoadingAfter(15 * time.Millisecond)
	if !p.Loading() {
		t.Fatal("overlay should stay visible until the delay passes")
	}
	waitFor(t, "delayed hide", func() bool { return !rec.Loading() })
}

func TestClose_CancelsPendingTimers(t *testing.T) {
	rec := uitest.NewRecorder()
	p := ui.NewPresenter(rec, ui.Options{
		NoticeVisible: 10 * time.Millisecond,
		NoticeExit:    10 * time.Millisecond,
	})

	n := p.Notify("bye", domain.NoticeSuccess)
	p.ShowLoading()
	p.HideLoadingAfter(10 * time.Millisecond)
	p.Close()

	time.Sleep(50 * time.Millisecond)
	if rec.Faded(n.ID) {
		t.Error("closed presenter must not fade notices")
	}
	if !rec.Loading() {
		t.Error("closed presenter must not run the delayed hide")
	}
}
