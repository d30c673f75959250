package domain

import (
	"fmt"
	"io"
)

// FileLabelPlaceholder is shown in the file-name label when nothing is selected.
const FileLabelPlaceholder = "No file selected"

// Submission is one uploaded source file as reported by GET /api/submissions.
// SubmissionTime is preformatted by the backend and displayed verbatim.
type Submission struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	ProjectName    string `json:"project_name"`
	Filename       string `json:"filename"`
	SubmissionTime string `json:"submission_time"`
	FileSize       int64  `json:"file_size"`
}

// UploadForm holds the file picker and project-name input of the upload form.
// It only lives until the submit round trip completes.
type UploadForm struct {
	FilePath    string
	ProjectName string
}

// Upload is the multipart payload sent to POST /api/submit.
type Upload struct {
	Filename    string
	Content     io.Reader
	ProjectName string
}

// Download is the file stream returned by GET /api/download/{id}.
// The caller owns Body and must close it.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// EditorMode selects how the editor page opens a submission.
type EditorMode string

const (
	ModeView EditorMode = "view"
	ModeEdit EditorMode = "edit"
)

// NoticeKind styles a notification banner.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient banner. At most one is visible at a time.
type Notice struct {
	ID      string
	Kind    NoticeKind
	Message string
}

// Icon returns the glyph drawn in front of the message.
func (n Notice) Icon() string {
	if n.Kind == NoticeError {
		return "✖"
	}
	return "✔"
}

// Color returns the banner background: green for success, red for error.
func (n Notice) Color() string {
	if n.Kind == NoticeError {
		return "#f56565"
	}
	return "#48bb78"
}

// APIError is an application-level failure: the backend answered with a
// well-formed payload whose success flag is false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal api: %s", e.Message)
}
