package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"braceframe/internal/calc/brace"
)

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func sampleWorkbook(t *testing.T) []byte {
	return workbook(t,
		[]interface{}{"type", "height", "pressure"},
		[]interface{}{"SB-2", 5.0, 30},
		[]interface{}{"SB-A+B", "5,5", "40"},
		[]interface{}{"SB-2", "abc", 30},
		[]interface{}{},
		[]interface{}{"SB-2", 8.0, 30},
		[]interface{}{"SB-X", 5.0, 30},
	)
}

func TestImport(t *testing.T) {
	res, err := Import(bytes.NewReader(sampleWorkbook(t)), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Results, 2)
	assert.Equal(t, brace.LoadRecord{E: 1.25, Z: 186, V1: 48, V2: 98, F: 4}, res.Results[0].Loads)
	assert.Equal(t, brace.LoadRecord{E: 1.90, Z: 266, V1: 72, V2: 140, F: 7}, res.Results[1].Loads)

	require.Len(t, res.Skipped, 3)
	assert.Contains(t, res.Skipped[0], "row 4: height")
	assert.Contains(t, res.Skipped[1], "row 6: input out of range for SB-2")
	assert.Contains(t, res.Skipped[2], `row 7: brace frame type "SB-X" not supported`)

	err = res.Err()
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), "3 errors occurred")
}

func TestImportSkipsNonFiniteNumbers(t *testing.T) {
	data := workbook(t,
		[]interface{}{"type", "height", "pressure"},
		[]interface{}{"SB-2", "NaN", 40},
		[]interface{}{"SB-2", 5.0, "+Inf"},
		[]interface{}{"SB-2", 5.0, 40},
	)
	res, err := Import(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Skipped, 2)
	assert.Contains(t, res.Skipped[0], "row 2: height")
	assert.Contains(t, res.Skipped[1], "row 3: pressure")

	rr := httptest.NewRecorder()
	(&Handler{}).Brace(rr, upload(t, "/api/tools/brace/import", data))
	require.Equal(t, http.StatusOK, rr.Code)
	var got ImportResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 1, got.Count)
	assert.Len(t, got.Skipped, 2)
}

func TestImportErrIsNilWithoutSkippedRows(t *testing.T) {
	data := workbook(t,
		[]interface{}{"type", "height", "pressure"},
		[]interface{}{"SB-2", 5.0, 40},
	)
	res, err := Import(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.NoError(t, res.Err())
	assert.Empty(t, res.Skipped)
}

func TestImportRejectsBadWorkbooks(t *testing.T) {
	_, err := Import(bytes.NewReader([]byte("not a zip")), nil)
	assert.Error(t, err)

	_, err = Import(bytes.NewReader(workbook(t, []interface{}{"type", "height", "pressure"})), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sheet")
}

func TestExport(t *testing.T) {
	res, err := brace.Calculate(brace.Input{BraceType: "SB-2", HeightM: 5.00, PressureKNM2: 40})
	require.NoError(t, err)

	f, err := Export([]brace.Result{res})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Brace Frame Type", rows[0][0])
	assert.Equal(t, "Notes", rows[0][14])
	assert.Equal(t, []string{"SB-2", "5", "40", "FALSE", "FALSE", "1.25", "238", "63", "120", "6"}, rows[1][:10])
	assert.Contains(t, rows[1][14], "Required: Diagonal Bracing for concreting")

	width, err := f.GetColWidth(exportSheet, "O")
	require.NoError(t, err)
	assert.Equal(t, 16.0, width)
}

func upload(t *testing.T, url string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cases.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerBrace(t *testing.T) {
	h := &Handler{}

	rr := httptest.NewRecorder()
	h.Brace(rr, upload(t, "/api/tools/brace/import", sampleWorkbook(t)))
	require.Equal(t, http.StatusOK, rr.Code)
	var res ImportResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, 2, res.Count)
	assert.Len(t, res.Skipped, 3)

	rr = httptest.NewRecorder()
	h.Brace(rr, upload(t, "/api/tools/brace/import?format=xlsx", sampleWorkbook(t)))
	require.Equal(t, http.StatusOK, rr.Code)
	f, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rr = httptest.NewRecorder()
	h.Brace(rr, upload(t, "/api/tools/brace/import", []byte("garbage")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.Brace(rr, httptest.NewRequest(http.MethodPost, "/api/tools/brace/import", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
