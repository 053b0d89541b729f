package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"skillboard/internal/analysis"
	"skillboard/internal/models"

	"github.com/go-pdf/fpdf"
)

// Export row bounds
const (
	DefaultExportRows = 25
	MaxExportRows     = 50
)

// ExportService renders the head of the rule table as CSV or PDF
type ExportService struct {
	Title string
	now   func() time.Time
}

// NewExportService creates an export service
func NewExportService() *ExportService {
	return &ExportService{
		Title: "Skill Association Rules",
		now:   time.Now,
	}
}

// ClampRows bounds a requested row count to [1, MaxExportRows]; 0 means the default
func ClampRows(n int) int {
	switch {
	case n == 0:
		return DefaultExportRows
	case n < 1:
		return 1
	case n > MaxExportRows:
		return MaxExportRows
	}
	return n
}

// WriteCSV writes the first n rules with the canonical header
func (s *ExportService) WriteCSV(w io.Writer, table *analysis.RuleTable, n int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(analysis.RequiredColumns); err != nil {
		return err
	}
	for _, r := range table.Head(ClampRows(n)) {
		record := []string{
			r.Antecedents,
			r.Consequents,
			formatFloat(r.Support),
			formatFloat(r.Confidence),
			formatFloat(r.Lift),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// pdf column layout on an A4 portrait page with 10mm margins
var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Antecedents", 80, "L"},
	{"Consequents", 80, "L"},
	{"Lift", 30, "R"},
}

// WritePDF writes the first n rules as a three column table
func (s *ExportService) WritePDF(w io.Writer, table *analysis.RuleTable, n int) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(s.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(v string) string { return tr(toLatin1(v)) }

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, text(s.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, text(fmt.Sprintf("Generated %s", s.now().Format("2006-01-02 15:04"))), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, r := range table.Head(ClampRows(n)) {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		cells := []string{
			models.DisplaySet(r.Antecedents),
			models.DisplaySet(r.Consequents),
			strconv.FormatFloat(r.Lift, 'f', 2, 64),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, fitText(pdf, text(cells[i]), col.width-2), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}

// toLatin1 replaces characters the core PDF fonts cannot encode
func toLatin1(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x20 {
			sb.WriteRune(' ')
		} else if r < 0x7f || (r >= 0xa0 && r <= 0xff) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('?')
		}
	}
	return sb.String()
}

// fitText truncates s with "..." so it fits in width
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
