// Package ui owns the presentation state of the portal: the single visible
// notification and the loading overlay flag. It is the only writer of both.
package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csg33k/code-portal/internal/domain"
	"github.com/csg33k/code-portal/internal/ports"
)

const (
	DefaultNoticeVisible = 3 * time.Second
	DefaultNoticeExit    = 1 * time.Second
)

// Options tunes notification timings. Zero values take the defaults.
type Options struct {
	NoticeVisible time.Duration
	NoticeExit    time.Duration
}

type activeNotice struct {
	notice domain.Notice
	timer  *time.Timer
}

// Presenter shows notifications and toggles the loading overlay on a Surface.
type Presenter struct {
	surface ports.Surface
	opts    Options

	mu       sync.Mutex
	current  *activeNotice
	loading  bool
	hideWait *time.Timer
	closed   bool
}

func NewPresenter(s ports.Surface, opts Options) *Presenter {
	if opts.NoticeVisible <= 0 {
		opts.NoticeVisible = DefaultNoticeVisible
	}
	if opts.NoticeExit <= 0 {
		opts.NoticeExit = DefaultNoticeExit
	}
	return &Presenter{surface: s, opts: opts}
}

// Notify replaces the visible notice with a new one and schedules its
// dismissal: visible for NoticeVisible, then faded and removed NoticeExit later.
func (p *Presenter) Notify(message string, kind domain.NoticeKind) domain.Notice {
	n := domain.Notice{ID: uuid.NewString(), Kind: kind, Message: message}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return n
	}
	p.dropCurrentLocked()

	a := &activeNotice{notice: n}
	p.current = a
	p.surface.MountNotice(n)
	a.timer = time.AfterFunc(p.opts.NoticeVisible, func() { p.fade(a) })
	return n
}

func (p *Presenter) fade(a *activeNotice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != a {
		return
	}
	p.surface.FadeNotice(a.notice)
	a.timer = time.AfterFunc(p.opts.NoticeExit, func() { p.remove(a) })
}

func (p *Presenter) remove(a *activeNotice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != a {
		return
	}
	p.surface.RemoveNotice(a.notice)
	p.current = nil
}

// dropCurrentLocked tears down the visible notice and its pending timer.
func (p *Presenter) dropCurrentLocked() {
	if p.current == nil {
		return
	}
	if p.current.timer != nil {
		p.current.timer.Stop()
	}
	p.surface.RemoveNotice(p.current.notice)
	p.current = nil
}

// Current returns the visible notice, if any.
func (p *Presenter) Current() (domain.Notice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return domain.Notice{}, false
	}
	return p.current.notice, true
}

// ShowLoading makes the overlay visible. There is no reference counting:
// the last Show or Hide wins.
func (p *Presenter) ShowLoading() {
	p.setLoading(true)
}

func (p *Presenter) HideLoading() {
	p.setLoading(false)
}

// HideLoadingAfter hides the overlay once d has elapsed. A later call
// replaces the pending one; Close cancels it.
func (p *Presenter) HideLoadingAfter(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.hideWait != nil {
		p.hideWait.Stop()
	}
	p.hideWait = time.AfterFunc(d, p.HideLoading)
}

func (p *Presenter) setLoading(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.loading = visible
	p.surface.SetLoading(visible)
}

// Loading reports whether the overlay is visible.
func (p *Presenter) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Close stops every pending timer. The presenter ignores calls afterwards.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil && p.current.timer != nil {
		p.current.timer.Stop()
	}
	if p.hideWait != nil {
		p.hideWait.Stop()
	}
	p.closed = true
}
