package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/jhandl/finance/internal/domain"
)

const (
	pdfMarginLeft   = 10.0
	pdfMarginTop    = 12.0
	pdfMarginRight  = 10.0
	pdfMarginBottom = 12.0
)

// PDFFormatter renders a printable landscape report
type PDFFormatter struct {
	// Now stamps the report; nil uses time.Now.
	Now func() time.Time
}

func (p PDFFormatter) Name() string { return "pdf" }

type pdfColumn struct {
	title string
	width float64
	value func(yr domain.YearResult) string
}

var pdfColumns = []pdfColumn{
	{"Year", 13, func(yr domain.YearResult) string { return fmt.Sprint(yr.Year) }},
	{"Age", 10, func(yr domain.YearResult) string { return fmt.Sprint(yr.Age) }},
	{"Country", 24, func(yr domain.YearResult) string { return yr.Country }},
	{"Income", 25, func(yr domain.YearResult) string { return FormatCurrency(yr.Income) }},
	{"Pension", 23, func(yr domain.YearResult) string { return FormatCurrency(yr.PensionIncome) }},
	{"Gains", 23, func(yr domain.YearResult) string { return FormatCurrency(yr.InvestmentGains) }},
	{"Tax", 23, func(yr domain.YearResult) string { return FormatCurrency(yr.TotalTax) }},
	{"Net", 25, func(yr domain.YearResult) string { return FormatCurrency(yr.NetIncome) }},
	{"Expenses", 23, func(yr domain.YearResult) string { return FormatCurrency(yr.Expenses) }},
	{"Wealth", 30, func(yr domain.YearResult) string { return FormatCurrency(yr.RemainingWealth) }},
	{"Pension Pot", 28, func(yr domain.YearResult) string { return FormatCurrency(yr.PensionPot) }},
}

func (p PDFFormatter) Format(run *domain.RunResult) ([]byte, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	pdf.SetAutoPageBreak(true, pdfMarginBottom)
	pdf.SetTitle("Net Worth Projection", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - pdfMarginLeft - pdfMarginRight

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	title := "Net Worth Projection"
	if run.ProfileName != "" {
		title += ": " + run.ProfileName
	}
	pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("%d to %d, %d years simulated, %d skipped. Generated %s",
		run.StartYear, run.TargetYear, len(run.Years), run.SkippedYears(), now().Format("2 January 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(0, 51, 102)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	pdf.SetFont("Arial", "", 8)
	for i, yr := range run.Years {
		if pdf.GetY()+6 > pageHeight-pdfMarginBottom {
			pdf.AddPage()
			writeHeader()
			pdf.SetFont("Arial", "", 8)
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 247, 250)
		pdf.SetTextColor(50, 50, 50)
		for _, col := range pdfColumns {
			align := "R"
			if col.title == "Country" {
				align = "L"
			}
			if col.title == "Wealth" && yr.RemainingWealth.IsNegative() {
				pdf.SetTextColor(199, 62, 29)
			}
			pdf.CellFormat(col.width, 6, col.value(yr), "1", 0, align, fill, 0, "")
			pdf.SetTextColor(50, 50, 50)
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 7, fmt.Sprintf("Final wealth: %s    Final pension pot: %s",
		FormatCurrency(run.FinalWealth), FormatCurrency(run.FinalPensionPot)), "", 1, "L", false, 0, "")

	if len(run.Warnings) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(241, 143, 1)
		pdf.CellFormat(contentWidth, 6, "Warnings", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, w := range run.Warnings {
			pdf.MultiCell(contentWidth, 5, fmt.Sprintf("%d: %s", w.Year, w.Message), "", "L", false)
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 6, "Key assumptions", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, a := range RunAssumptions(run) {
		pdf.CellFormat(contentWidth, 5, "- "+a, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
