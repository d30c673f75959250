package templates_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/csg33k/code-portal/internal/domain"
	"github.com/csg33k/code-portal/internal/templates"
)

func TestSubmissionsBody_EmptyPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	if err := templates.SubmissionsBody(domain.NewSubmissionTable(nil)).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, "<tr"); n != 1 {
		t.Fatalf("want exactly one row, got %d in %s", n, out)
	}
	if !strings.Contains(out, `colspan="7"`) {
		t.Errorf("placeholder must span all 7 columns: %s", out)
	}
	if !strings.Contains(out, domain.EmptyTableMessage) {
		t.Errorf("placeholder text missing: %s", out)
	}
}

func TestSubmissionsBody_OneRowPerSubmissionInOrder(t *testing.T) {
	tbl := domain.NewSubmissionTable([]domain.Submission{
		{ID: 4, Username: "u", ProjectName: "p", Filename: "f.py", SubmissionTime: "t", FileSize: 2048},
		{ID: 2, Username: "u", ProjectName: "p", Filename: "g.py", SubmissionTime: "t", FileSize: 1},
	})
	var buf bytes.Buffer
	if err := templates.SubmissionsBody(tbl).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, "<tr"); n != 2 {
		t.Fatalf("want 2 rows, got %d", n)
	}
	if strings.Index(out, `data-id="4"`) > strings.Index(out, `data-id="2"`) {
		t.Error("rows must keep input order")
	}
	if !strings.Contains(out, "2.00 KB") {
		t.Error("size cell missing")
	}
	if n := strings.Count(out, `data-action="`); n != 6 {
		t.Errorf("want 3 action buttons per row, got %d total", n)
	}
}

func TestSubmissionsBody_EscapesServerStrings(t *testing.T) {
	tbl := domain.NewSubmissionTable([]domain.Submission{
		{ID: 1, Username: `<script>alert(1)</script>`, ProjectName: `"quoted"`, Filename: "a&b.py"},
	})
	var buf bytes.Buffer
	if err := templates.SubmissionsBody(tbl).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("username was not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") || !strings.Contains(out, "a&amp;b.py") {
		t.Errorf("expected escaped entities in %s", out)
	}
}

func TestNoticeBanner(t *testing.T) {
	var buf bytes.Buffer
	n := domain.Notice{ID: "n1", Kind: domain.NoticeError, Message: "<b>nope</b>"}
	if err := templates.NoticeBanner(n).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"notification-error", "#f56565", "fa-exclamation-circle", "&lt;b&gt;nope&lt;/b&gt;"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}

func TestHTMLExporter(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	e := templates.HTMLExporter{Title: "Class 3B", Now: func() time.Time { return fixed }}
	var buf bytes.Buffer
	if err := e.Export(context.Background(), domain.NewSubmissionTable(nil), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<!doctype html>", "<title>Class 3B</title>", "Generated 2024-06-01 12:30:00", `id="submissions-table"`, "<th>Actions</th>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}
