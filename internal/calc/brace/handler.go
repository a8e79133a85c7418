package brace

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ansel1/merry"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Catalog *Catalog
}

func (h *Handler) catalog() *Catalog {
	if h.Catalog == nil {
		return defaultCatalog
	}
	return h.Catalog
}

type TypeInfo struct {
	BraceType   BraceType `json:"brace_type"`
	MinHeightM  float64   `json:"min_height_m"`
	MaxHeightM  float64   `json:"max_height_m"`
	MinPressure float64   `json:"min_pressure_kn_m2"`
	MaxPressure float64   `json:"max_pressure_kn_m2"`
	Heights     []float64 `json:"heights"`
	Pressures   []float64 `json:"pressures"`
}

func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	c := h.catalog()
	var out []TypeInfo
	for _, t := range c.Types() {
		tbl, _ := c.Table(t)
		hMin, hMax := tbl.HeightRange()
		pMin, pMax := tbl.PressureRange()
		out = append(out, TypeInfo{
			BraceType:   t,
			MinHeightM:  hMin,
			MaxHeightM:  hMax,
			MinPressure: pMin,
			MaxPressure: pMax,
			Heights:     tbl.Heights,
			Pressures:   tbl.Pressures,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.catalog().Calculate(input)
	if err != nil {
		WriteError(w, r, StatusError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

type RulesInput struct {
	BraceType string  `json:"brace_type"`
	HeightM   float64 `json:"height_m"`
	EM        float64 `json:"e_m"`
}

func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	var input RulesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	ms := Rules(input.BraceType, input.HeightM, input.EM)
	if ms == nil {
		ms = []Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ms)
}

// StatusError attaches the HTTP status matching a calculation error.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnsupportedBraceType):
		code = http.StatusNotFound
	case errors.Is(err, ErrOutOfRange), errors.Is(err, ErrDataGap):
		code = http.StatusUnprocessableEntity
	}
	return merry.Wrap(err).WithHTTPCode(code)
}

// WriteError writes err as a plain text response with its merry HTTP code.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := merry.HTTPCode(err)
	entry := logrus.WithFields(logrus.Fields{"path": r.URL.Path, "status": code})
	if code >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Info("calculation rejected")
	}
	http.Error(w, err.Error(), code)
}
