package templates

import (
	"strconv"

	"github.com/csg33k/code-portal/internal/domain"
)

// itoa converts an int64 to a string, used for ids in attributes.
func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func noticeIcon(kind domain.NoticeKind) string {
	if kind == domain.NoticeError {
		return "fa-exclamation-circle"
	}
	return "fa-check-circle"
}

var actionIcons = map[string]string{
	"view":     "fa-eye",
	"edit":     "fa-edit",
	"download": "fa-download",
}

var actionButtons = map[string]string{
	"view":     "btn-secondary",
	"edit":     "btn-success",
	"download": "btn-primary",
}
