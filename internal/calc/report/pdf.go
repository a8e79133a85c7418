package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"

	"braceframe/internal/calc/brace"
)

const (
	Program        = "Brace Frame Load Calculator"
	ProgramVersion = "1.0 - 2025"
	Title          = "Brace Frame Load Calculation Report"
	DefaultCompany = "tekhne Consulting Engineers"
)

// Report is everything printed on a calculation report.
type Report struct {
	Result        brace.Result
	ProjectNumber string
	ProjectName   string
}

type Renderer struct {
	CompanyName    string
	CompanyAddress string
	Logo           *LogoCache
	Now            func() time.Time

	uncompressed bool // leaves page streams readable, for tests
}

func (rd *Renderer) now() time.Time {
	if rd.Now != nil {
		return rd.Now()
	}
	return time.Now()
}

// core fonts are cp1252, which has no ≥ or ≤
var asciiOperators = strings.NewReplacer("≥", ">=", "≤", "<=")

var (
	headerFill = [3]int{128, 128, 128}
	headerText = [3]int{245, 245, 245}
	bodyFill   = [3]int{245, 245, 220}
)

// Render writes the PDF report to w.
func (rd *Renderer) Render(ctx context.Context, w io.Writer, rep Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!rd.uncompressed)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 18)
	utf := pdf.UnicodeTranslatorFromDescriptor("")
	tr := func(s string) string { return utf(asciiOperators.Replace(s)) }

	pdf.SetFooterFunc(func() {
		pdf.SetY(-13)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s %s | tekhne © | Page %d", Program, ProgramVersion, pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	rd.header(ctx, pdf, tr)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		"Project Number: " + rep.ProjectNumber,
		"Project Name: " + rep.ProjectName,
		"Date: " + rd.now().Format("January 02, 2006"),
	} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	res := rep.Result
	l := res.Loads
	fin := res.Final

	inputs := [][2]string{
		{"Parameter", "Value"},
		{"Brace Frame Type", res.BraceType},
		{"Concreting Height (m)", fmt.Sprintf("%.2f", res.HeightM)},
		{"Fresh Concrete Pressure (kN/m²)", fmt.Sprintf("%.2f", res.PressureKNM2)},
	}
	if res.Provisional {
		inputs = append(inputs, [2]string{"Load Table Rows", "provisional"})
	}
	heading(pdf, tr, "Input Parameters")
	twoColumnTable(pdf, tr, inputs)

	heading(pdf, tr, "Calculated Loads (Per Meter)")
	twoColumnTable(pdf, tr, [][2]string{
		{"Parameter", "Value"},
		{"Permissible Width of Influence (e)", fmt.Sprintf("%.2f m", l.E)},
		{"Anchor Tension Force (Z)", fmt.Sprintf("%.2f kN/m", l.Z)},
		{"Spindle Force V1", fmt.Sprintf("%.2f kN/m", l.V1)},
		{"Spindle Force V2", fmt.Sprintf("%.2f kN/m", l.V2)},
		{"Deflection (f)", fmt.Sprintf("%.2f mm/m", l.F)},
	})

	heading(pdf, tr, fmt.Sprintf("Final Values Based on %.2f m Spacing", l.E))
	twoColumnTable(pdf, tr, [][2]string{
		{"Parameter", "Value"},
		{"Anchor Tension Force (Z)", fmt.Sprintf("%.2f kN", fin.ZKN)},
		{"Spindle Force V1", fmt.Sprintf("%.2f kN", fin.V1KN)},
		{"Spindle Force V2", fmt.Sprintf("%.2f kN", fin.V2KN)},
		{"Deflection (f)", fmt.Sprintf("%.2f mm", fin.FMM)},
	})

	heading(pdf, tr, "Validation and Notes")
	notesTable(pdf, tr, res.Messages)

	return pdf.Output(w)
}

func (rd *Renderer) header(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string) {
	top := pdf.GetY()
	if !rd.drawLogo(ctx, pdf, 15, top) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(15, top)
		pdf.CellFormat(60, 6, tr("[Logo Placeholder]"), "", 0, "L", false, 0, "")
	}

	company := rd.CompanyName
	if company == "" {
		company = DefaultCompany
	}
	pdf.SetXY(75, top)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(120, 5, tr(company), "", 2, "C", false, 0, "")
	if addr := strings.TrimSpace(rd.CompanyAddress); addr != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(120, 5, tr(addr), "", "C", false)
	}
	pdf.SetXY(15, top+24)
}

// drawLogo places the cached logo image. It reports false when there is no
// usable image, in which case nothing has been drawn.
func (rd *Renderer) drawLogo(ctx context.Context, pdf *gofpdf.Fpdf, x, y float64) bool {
	if rd.Logo == nil {
		return false
	}
	path := rd.Logo.Ensure(ctx)
	if path == "" {
		return false
	}
	b, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("read logo")
		return false
	}
	typ, ok := imageType(b)
	if !ok {
		logrus.WithField("path", path).Warn("logo is not a PNG, JPEG or GIF image")
		return false
	}
	opts := gofpdf.ImageOptions{ImageType: typ}

	// a broken image puts a document into its error state for good,
	// so it is tried on a throwaway document first
	trial := gofpdf.New("P", "mm", "A4", "")
	trial.RegisterImageOptionsReader("logo", opts, bytes.NewReader(b))
	if !trial.Ok() {
		logrus.WithError(trial.Error()).WithField("path", path).Warn("logo not supported")
		return false
	}

	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(b))
	pdf.ImageOptions("logo", x, y, 50, 20, false, opts, 0, "")
	return pdf.Ok()
}

func imageType(b []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return "", false
	}
	switch format {
	case "png":
		return "PNG", true
	case "jpeg":
		return "JPG", true
	case "gif":
		return "GIF", true
	}
	return "", false
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, tr(text), "", 1, "L", false, 0, "")
}

func setHeaderStyle(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(headerText[0], headerText[1], headerText[2])
}

func setBodyStyle(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetFillColor(bodyFill[0], bodyFill[1], bodyFill[2])
	pdf.SetTextColor(0, 0, 0)
}

// twoColumnTable draws rows[0] as the header row.
func twoColumnTable(pdf *gofpdf.Fpdf, tr func(string) string, rows [][2]string) {
	pdf.SetDrawColor(0, 0, 0)
	for i, row := range rows {
		h := 5.0
		if i == 0 {
			setHeaderStyle(pdf)
			h = 6
		} else {
			setBodyStyle(pdf)
		}
		pdf.CellFormat(100, h, tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.CellFormat(80, h, tr(row[1]), "1", 1, "C", true, 0, "")
	}
}

func notesTable(pdf *gofpdf.Fpdf, tr func(string) string, msgs []brace.Message) {
	pdf.SetDrawColor(0, 0, 0)
	setHeaderStyle(pdf)
	pdf.CellFormat(180, 6, "Notes", "1", 1, "L", true, 0, "")
	setBodyStyle(pdf)
	for _, m := range msgs {
		pdf.MultiCell(180, 5, tr(m.Text), "1", "L", true)
	}
}

// FileName is the download name of a report for the given project.
func FileName(projectName string) string {
	return "Brace_Frame_Calculation_Report_" + strings.ReplaceAll(projectName, " ", "_") + ".pdf"
}
