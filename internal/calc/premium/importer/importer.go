package importer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"
	"github.com/xuri/excelize/v2"

	"braceframe/internal/calc/brace"
)

type ImportResult struct {
	Count   int            `json:"count"`
	Results []brace.Result `json:"results"`
	Skipped []string       `json:"skipped"`

	skipped *multierror.Error
}

// Err returns the skipped rows as one error, or nil when every row was
// evaluated.
func (r ImportResult) Err() error {
	return r.skipped.ErrorOrNil()
}

// Import evaluates every data row of the first sheet of an xlsx workbook.
// Columns are brace type, height [m] and pressure [kN/m²]; row 1 is the
// header. Rows that cannot be parsed or evaluated are reported in Skipped.
func Import(r io.Reader, c *brace.Catalog) (ImportResult, error) {
	if c == nil {
		c = brace.Default()
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, merry.Prepend(err, "invalid file")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return ImportResult{}, merry.Prepend(err, "read sheet")
	}
	if len(rows) < 2 {
		return ImportResult{}, merry.New("empty sheet")
	}

	out := ImportResult{Results: []brace.Result{}, Skipped: []string{}}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		input, err := parseRow(row)
		if err == nil {
			var res brace.Result
			res, err = c.Calculate(input)
			if err == nil {
				out.Results = append(out.Results, res)
				continue
			}
		}
		rowErr := merry.Prepend(err, fmt.Sprintf("row %d", i+1))
		out.skipped = multierror.Append(out.skipped, rowErr)
		out.Skipped = append(out.Skipped, rowErr.Error())
	}
	out.Count = len(out.Results)
	return out, nil
}

func parseRow(row []string) (brace.Input, error) {
	if len(row) < 3 {
		return brace.Input{}, fmt.Errorf("expected brace type, height and pressure")
	}
	height, err := toFloat(row[1])
	if err != nil {
		return brace.Input{}, fmt.Errorf("height: %w", err)
	}
	pressure, err := toFloat(row[2])
	if err != nil {
		return brace.Input{}, fmt.Errorf("pressure: %w", err)
	}
	return brace.Input{
		BraceType:    strings.TrimSpace(row[0]),
		HeightM:      height,
		PressureKNM2: pressure,
	}, nil
}

func blank(row []string) bool {
	for _, s := range row {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// toFloat accepts a decimal comma as written by some spreadsheet locales.
func toFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

var exportHeader = []interface{}{
	"Brace Frame Type", "Height (m)", "Pressure (kN/m²)", "Interpolated", "Provisional",
	"e (m)", "Z (kN/m)", "V1 (kN/m)", "V2 (kN/m)", "f (mm/m)",
	"Z final (kN)", "V1 final (kN)", "V2 final (kN)", "f final (mm)", "Notes",
}

const exportSheet = "Results"

// Export writes results to a new workbook, one row per result.
func Export(results []brace.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, res := range results {
		notes := make([]string, 0, len(res.Messages))
		for _, m := range res.Messages {
			notes = append(notes, m.Text)
		}
		row := []interface{}{
			res.BraceType, res.HeightM, res.PressureKNM2, res.Interpolated, res.Provisional,
			res.Loads.E, res.Loads.Z, res.Loads.V1, res.Loads.V2, res.Loads.F,
			res.Final.ZKN, res.Final.V1KN, res.Final.V2KN, res.Final.FMM,
			strings.Join(notes, "\n"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "O", 16); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
