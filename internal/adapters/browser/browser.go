// Package browser hands editor and sign-out pages to the system browser.
package browser

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pkg/browser"
)

// Navigator opens pages with the desktop's default browser. Navigate does not
// open anything: after sign-out the portal session is over, so the target is
// recorded and printed for the user.
type Navigator struct {
	out      io.Writer
	openURL  func(string) error
	mu       sync.Mutex
	location string
}

func New(out io.Writer) *Navigator {
	return &Navigator{out: out, openURL: browser.OpenURL}
}

func (n *Navigator) Open(url string) error {
	slog.Debug("opening browser", "url", url)
	if err := n.openURL(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

func (n *Navigator) Navigate(url string) error {
	n.mu.Lock()
	n.location = url
	n.mu.Unlock()
	_, err := fmt.Fprintf(n.out, "signed out, continue at %s\n", url)
	return err
}

// Location is the last address passed to Navigate.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}
