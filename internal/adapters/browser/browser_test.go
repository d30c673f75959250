package browser

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestOpen_UsesLauncher(t *testing.T) {
	var got string
	n := New(&bytes.Buffer{})
	n.openURL = func(u string) error { got = u; return nil }

	if err := n.Open("http://localhost:5000/editor/3?mode=view"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != "http://localhost:5000/editor/3?mode=view" {
		t.Errorf("launched %q", got)
	}
}

func TestOpen_WrapsLauncherError(t *testing.T) {
	boom := errors.New("no display")
	n := New(&bytes.Buffer{})
	n.openURL = func(string) error { return boom }

	if err := n.Open("http://x/editor/1?mode=edit"); !errors.Is(err, boom) {
		t.Fatalf("want wrapped launcher error, got %v", err)
	}
}

func TestNavigate_RecordsLocation(t *testing.T) {
	var buf bytes.Buffer
	n := New(&buf)
	if err := n.Navigate("http://localhost:5000/login"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if n.Location() != "http://localhost:5000/login" {
		t.Errorf("location = %q", n.Location())
	}
	if !strings.Contains(buf.String(), "http://localhost:5000/login") {
		t.Errorf("target not printed: %q", buf.String())
	}
}
