package ports

import (
	"context"
	"io"

	"github.com/csg33k/code-portal/internal/domain"
)

// SubmissionAPI is the backend contract consumed by the portal.
// Application failures are returned as *domain.APIError; any other error is a
// transport failure.
type SubmissionAPI interface {
	Submit(ctx context.Context, u domain.Upload) error
	ListSubmissions(ctx context.Context) ([]domain.Submission, error)
	Download(ctx context.Context, id int64) (*domain.Download, error)

	// Logout returns the redirect target when the response was redirected,
	// or "" when it was not.
	Logout(ctx context.Context) (string, error)
	Login(ctx context.Context, username, password string) error

	// EditorURL is the absolute editor page address for a submission.
	EditorURL(id int64, mode domain.EditorMode) string
}

// Surface is the page the portal draws on: the loading overlay, the
// notification mount point, the file-name label and the results table body.
type Surface interface {
	SetLoading(visible bool)

	MountNotice(n domain.Notice)
	// FadeNotice plays the exit transition of a mounted notice.
	FadeNotice(n domain.Notice)
	RemoveNotice(n domain.Notice)

	// RenderTable replaces the whole table body.
	RenderTable(t domain.SubmissionTable)
	SetFileLabel(label string)
}

// Navigator opens pages outside the portal.
type Navigator interface {
	// Open shows url in a new browsing context.
	Open(url string) error
	// Navigate moves the current page to url.
	Navigate(url string) error
}

// DownloadStore receives downloaded files and returns where they landed.
type DownloadStore interface {
	Save(ctx context.Context, filename string, data io.Reader) (string, error)
}

// TableExporter writes the submissions table in one output format.
type TableExporter interface {
	Export(ctx context.Context, t domain.SubmissionTable, w io.Writer) error
}
