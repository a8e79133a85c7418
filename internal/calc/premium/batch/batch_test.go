package batch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"braceframe/internal/calc/brace"
)

func TestCalculate(t *testing.T) {
	res, err := Calculate(nil, BatchInput{Items: []brace.Input{
		{BraceType: "SB-2", HeightM: 5.00, PressureKNM2: 30},
		{BraceType: "SB-A+B", HeightM: 5.50, PressureKNM2: 45},
	}})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, brace.LoadRecord{E: 1.25, Z: 186, V1: 48, V2: 98, F: 4}, res.Results[0].Loads)
	assert.InDelta(t, 292, res.Results[1].Loads.Z, 1e-9)
	assert.True(t, res.Results[1].Interpolated)
}

func TestCalculateStopsAtFirstError(t *testing.T) {
	_, err := Calculate(brace.Default(), BatchInput{Items: []brace.Input{
		{BraceType: "SB-2", HeightM: 5.00, PressureKNM2: 30},
		{BraceType: "SB-2", HeightM: 9.00, PressureKNM2: 30},
		{BraceType: "SB-X", HeightM: 5.00, PressureKNM2: 30},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, brace.ErrOutOfRange))
	assert.True(t, strings.HasPrefix(err.Error(), "item 2: "))

	_, err = Calculate(nil, BatchInput{})
	assert.True(t, errors.Is(err, ErrNoItems))
}

func TestHandler(t *testing.T) {
	testCases := []struct {
		id           string
		body         string
		expectedCode int
	}{
		{id: "valid batch", body: `{"items":[{"brace_type":"SB-2","height_m":5,"pressure_kn_m2":40}]}`, expectedCode: http.StatusOK},
		{id: "empty batch", body: `{"items":[]}`, expectedCode: http.StatusBadRequest},
		{id: "unsupported type", body: `{"items":[{"brace_type":"SB-9","height_m":5,"pressure_kn_m2":40}]}`, expectedCode: http.StatusNotFound},
		{id: "bad json", body: `{`, expectedCode: http.StatusBadRequest},
	}
	h := &Handler{}
	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Calc(rr, httptest.NewRequest(http.MethodPost, "/api/tools/brace/batch", strings.NewReader(tc.body)))
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}
