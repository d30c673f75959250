// Package uitest provides an in-memory Surface that mirrors what a page would
// show, for tests of code that draws through ports.Surface.
package uitest

import (
	"sync"

	"github.com/csg33k/code-portal/internal/domain"
)

// Recorder is a ports.Surface keeping the mounted notices, the overlay
// state and the last rendered table. It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	notices  []domain.Notice // mounted, in mount order
	faded    map[string]bool
	loading  bool
	toggles  []bool
	table    *domain.SubmissionTable
	renders  int
	label    string
	mounts   int
	removals int
}

func NewRecorder() *Recorder {
	return &Recorder{faded: map[string]bool{}}
}

func (r *Recorder) SetLoading(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = visible
	r.toggles = append(r.toggles, visible)
}

func (r *Recorder) MountNotice(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	r.mounts++
}

func (r *Recorder) FadeNotice(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faded[n.ID] = true
}

func (r *Recorder) RemoveNotice(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.notices {
		if m.ID == n.ID {
			r.notices = append(r.notices[:i], r.notices[i+1:]...)
			r.removals++
			return
		}
	}
}

func (r *Recorder) RenderTable(t domain.SubmissionTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = &t
	r.renders++
}

func (r *Recorder) SetFileLabel(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = label
}

// Notices returns the notices currently mounted on the page.
func (r *Recorder) Notices() []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notice(nil), r.notices...)
}

// Last returns the most recently mounted notice still on the page.
func (r *Recorder) Last() (domain.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return domain.Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func (r *Recorder) Faded(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faded[id]
}

func (r *Recorder) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// LoadingToggles returns every SetLoading value in call order.
func (r *Recorder) LoadingToggles() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.toggles...)
}

// Table returns the last rendered table and how many renders happened.
func (r *Recorder) Table() (*domain.SubmissionTable, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table, r.renders
}

func (r *Recorder) Label() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.label
}

// Counts returns how many notices were mounted and removed overall.
func (r *Recorder) Counts() (mounts, removals int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounts, r.removals
}
