package templates

import (
	"context"
	"io"
	"time"

	"github.com/csg33k/code-portal/internal/domain"
)

// HTMLExporter writes the submissions table as a standalone HTML page.
type HTMLExporter struct {
	Title string
	Now   func() time.Time
}

func (e HTMLExporter) Export(ctx context.Context, t domain.SubmissionTable, w io.Writer) error {
	title := e.Title
	if title == "" {
		title = "Code submissions"
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	generated := "Generated " + now().Format("2006-01-02 15:04:05")
	return Page(title, generated, t).Render(ctx, w)
}
