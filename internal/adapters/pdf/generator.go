// Package pdf renders the submissions table as a printable report.
// Rows flow across pages; the column header is repeated on every page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/code-portal/internal/domain"
)

// Exporter writes the report for ports.TableExporter.
type Exporter struct {
	Title string
	Now   func() time.Time
	// FontPath names a TrueType font used for all report text. When empty
	// the first installed entry of FontCandidates is used.
	FontPath string
}

func (e Exporter) Export(ctx context.Context, t domain.SubmissionTable, w io.Writer) error {
	title := e.Title
	if title == "" {
		title = "CODE SUBMISSIONS"
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return generate(t, title, now(), e.FontPath, w)
}

// FontCandidates are TrueType fonts with CJK coverage found on common
// installs. Core PDF fonts only cover cp1252.
var FontCandidates = []string{
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/google-droid-sans-fonts/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/truetype/arphic-gkai00mp/gkai00mp.ttf",
	"/usr/share/fonts/truetype/unifont/unifont.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\simhei.ttf`,
}

// DefaultFont returns the first installed FontCandidates entry, or "".
func DefaultFont() string {
	for _, p := range FontCandidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

const utf8Family = "report"

// loadFont registers the TrueType font at path and returns its family with
// an identity translator. Without a usable font it returns Helvetica and
// the cp1252 translator.
func loadFont(pdf *fpdf.Fpdf, path string) (string, func(string) string) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil && !isTrueType(data) {
			err = fmt.Errorf("not a TrueType font")
		}
		if err == nil {
			for _, style := range []string{"", "B", "I"} {
				pdf.AddUTF8FontFromBytes(utf8Family, style, data)
			}
			if err = pdf.Error(); err == nil {
				return utf8Family, func(s string) string { return s }
			}
			pdf.ClearError()
		}
		slog.Warn("pdf font unusable, falling back to Helvetica", "path", path, "err", err)
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

// data columns only; the action cell has no meaning on paper
var colWidths = [domain.ColumnCount - 1]float64{0.07, 0.13, 0.22, 0.24, 0.20, 0.14}

var colAlign = [domain.ColumnCount - 1]string{"R", "L", "L", "L", "L", "R"}

// isTrueType reports whether data starts with a TrueType sfnt version tag.
// Collections and CFF-flavoured OpenType are rejected by fpdf.
func isTrueType(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0, 1, 0, 0}) || bytes.HasPrefix(data, []byte("true"))
}

// GeneratePDF writes a landscape report of t to w using DefaultFont.
func GeneratePDF(t domain.SubmissionTable, title string, generated time.Time, w io.Writer) error {
	return generate(t, title, generated, "", w)
}

func generate(t domain.SubmissionTable, title string, generated time.Time, fontPath string, w io.Writer) error {
	pdf := fpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(false, 18)
	pdf.AliasNbPages("{nb}")
	if fontPath == "" {
		fontPath = DefaultFont()
	}
	family, tr := loadFont(pdf, fontPath)

	r := &report{pdf: pdf, family: family, tr: tr, title: title, generated: generated}
	r.newPage()

	if t.Empty() {
		r.placeholder()
	}
	for i, row := range t.Rows {
		r.row(i, row)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

type report struct {
	pdf       *fpdf.Fpdf
	family    string
	tr        func(string) string
	title     string
	generated time.Time
	y         float64
}

const rowH = 6.5

func (r *report) contentW() float64 {
	pageW, _ := r.pdf.GetPageSize()
	marginL, _, marginR, _ := r.pdf.GetMargins()
	return pageW - marginL - marginR
}

func (r *report) newPage() {
	pdf := r.pdf
	pdf.AddPage()
	marginL, marginT, _, _ := pdf.GetMargins()
	contentW := r.contentW()

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(r.family, "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, r.tr(r.title), "", 0, "L", false, 0, "")
	pdf.SetFont(r.family, "", 9)
	pdf.SetXY(marginL, marginT+1.5)
	pdf.CellFormat(contentW-2, 7, "Page "+fmt.Sprint(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	r.y = marginT + 14

	// ── Column header ────────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont(r.family, "B", 8.5)
	pdf.SetXY(marginL, r.y)
	for i, frac := range colWidths {
		pdf.CellFormat(contentW*frac, 7, r.tr(domain.Columns[i]), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	r.y += 7

	r.footer()
}

func (r *report) footer() {
	pdf := r.pdf
	_, pageH := pdf.GetPageSize()
	marginL, _, _, marginB := pdf.GetMargins()
	contentW := r.contentW()

	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont(r.family, "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Generated by code-portal", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, r.generated.Format("2006-01-02 15:04:05"), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// ensureRoom starts a new page when the next row would run into the footer.
func (r *report) ensureRoom() {
	_, pageH := r.pdf.GetPageSize()
	_, _, _, marginB := r.pdf.GetMargins()
	if r.y+rowH > pageH-marginB-8 {
		r.newPage()
	}
}

func (r *report) placeholder() {
	pdf := r.pdf
	marginL, _, _, _ := pdf.GetMargins()
	pdf.SetFont(r.family, "I", 9)
	pdf.SetTextColor(113, 128, 150)
	pdf.SetXY(marginL, r.y)
	pdf.CellFormat(r.contentW(), 20, r.tr(domain.EmptyTableMessage), "1", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	r.y += 20
}

func (r *report) row(i int, row domain.TableRow) {
	r.ensureRoom()
	pdf := r.pdf
	marginL, _, _, _ := pdf.GetMargins()
	contentW := r.contentW()

	// Alternating row background
	if i%2 == 0 {
		pdf.SetFillColor(250, 250, 250)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	pdf.SetFont(r.family, "", 8.5)
	pdf.SetXY(marginL, r.y)
	for c, frac := range colWidths {
		w := contentW * frac
		pdf.CellFormat(w, rowH, fit(pdf, r.tr(row.Cells[c]), w-2), "1", 0, colAlign[c], true, 0, "")
	}
	pdf.Ln(-1)
	r.y += rowH
}

// fit shortens s with a trailing "..." until it is at most w wide.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if cand := string(runes) + "..."; pdf.GetStringWidth(cand) <= w {
			return cand
		}
	}
	return ""
}
