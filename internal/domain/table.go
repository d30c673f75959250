package domain

import (
	"fmt"
	"strconv"
)

// ColumnCount is the number of visible columns in the submissions table,
// including the action cell. The empty-state placeholder spans all of them.
const ColumnCount = 7

// EmptyTableMessage is the placeholder text for an empty submissions list.
const EmptyTableMessage = "No submissions yet"

// Columns are the table headings in display order.
var Columns = [ColumnCount]string{"ID", "User", "Project", "File", "Submitted", "Size", "Actions"}

// Action is one per-row button. Command is the shell line that triggers it.
type Action struct {
	Name    string
	Title   string
	Command string
}

// TableRow is one rendered submission. Cells hold every column but the
// action cell, already formatted for display.
type TableRow struct {
	ID      int64
	Cells   [ColumnCount - 1]string
	Actions []Action
}

// SubmissionTable is the data-only model of the results table body.
// Renderers turn it into terminal, HTML or PDF output; it never carries markup.
type SubmissionTable struct {
	Rows []TableRow
}

// Empty reports whether the table renders the placeholder row.
func (t SubmissionTable) Empty() bool {
	return len(t.Rows) == 0
}

// NewSubmissionTable builds one row per submission in input order.
// No sorting or filtering is applied.
func NewSubmissionTable(subs []Submission) SubmissionTable {
	t := SubmissionTable{Rows: make([]TableRow, 0, len(subs))}
	for _, s := range subs {
		t.Rows = append(t.Rows, TableRow{
			ID: s.ID,
			Cells: [ColumnCount - 1]string{
				strconv.FormatInt(s.ID, 10),
				s.Username,
				s.ProjectName,
				s.Filename,
				s.SubmissionTime,
				FormatFileSize(s.FileSize),
			},
			Actions: rowActions(s.ID),
		})
	}
	return t
}

func rowActions(id int64) []Action {
	return []Action{
		{Name: "view", Title: "View code", Command: fmt.Sprintf("view %d", id)},
		{Name: "edit", Title: "Edit code", Command: fmt.Sprintf("edit %d", id)},
		{Name: "download", Title: "Download file", Command: fmt.Sprintf("download %d", id)},
	}
}

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count in the largest unit whose value is at
// least 1, capped at GB, with two decimals: 1536 -> "1.50 KB".
// Zero and negative sizes render as "0 B".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	i := 0
	for v := bytes; v >= 1024 && i < len(sizeUnits)-1; v /= 1024 {
		i++
	}
	value := float64(bytes)
	for range i {
		value /= 1024
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[i])
}
