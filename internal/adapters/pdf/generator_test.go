package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/csg33k/code-portal/internal/adapters/pdf"
	"github.com/csg33k/code-portal/internal/domain"
)

func TestExport_ProducesPDF(t *testing.T) {
	tbl := domain.NewSubmissionTable([]domain.Submission{
		{ID: 1, Username: "admin", ProjectName: "Sorting", Filename: "sort.py", SubmissionTime: "2024-05-01 10:00:00", FileSize: 2048},
	})
	var buf bytes.Buffer
	e := pdf.Exporter{Now: func() time.Time { return time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC) }}
	if err := e.Export(context.Background(), tbl, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestGeneratePDF_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := pdf.GeneratePDF(domain.NewSubmissionTable(nil), "EMPTY", time.Now(), &buf); err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}

func TestGeneratePDF_ManyRowsSpanPages(t *testing.T) {
	subs := make([]domain.Submission, 120)
	for i := range subs {
		subs[i] = domain.Submission{
			ID:          int64(i + 1),
			Username:    "user1",
			ProjectName: fmt.Sprintf("project with a rather long descriptive name %d", i),
			Filename:    "main.cpp",
			FileSize:    int64(i * 1000),
		}
	}
	var one, many bytes.Buffer
	if err := pdf.GeneratePDF(domain.NewSubmissionTable(subs[:1]), "R", time.Now(), &one); err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if err := pdf.GeneratePDF(domain.NewSubmissionTable(subs), "R", time.Now(), &many); err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if pageCount(many.Bytes()) <= pageCount(one.Bytes()) {
		t.Error("120 rows should need more pages than one row")
	}
}

// pageCount counts page objects, excluding the /Pages tree node.
func pageCount(doc []byte) int {
	return bytes.Count(doc, []byte("/Type /Page")) - bytes.Count(doc, []byte("/Type /Pages"))
}
