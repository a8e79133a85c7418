package brace

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedBraceType = errors.New("brace frame type not supported")
	ErrOutOfRange           = errors.New("input out of range")
	ErrDataGap              = errors.New("data not available")
)

type UnsupportedBraceTypeError struct {
	Type string
}

func (e *UnsupportedBraceTypeError) Error() string {
	return fmt.Sprintf("brace frame type %q not supported", e.Type)
}

func (e *UnsupportedBraceTypeError) Is(target error) bool { return target == ErrUnsupportedBraceType }

type OutOfRangeError struct {
	Type        BraceType
	MinHeight   float64
	MaxHeight   float64
	MinPressure float64
	MaxPressure float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("input out of range for %s: height range %.2f-%.2f m, pressure range %g-%g kN/m²",
		e.Type, e.MinHeight, e.MaxHeight, e.MinPressure, e.MaxPressure)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

type DataGapError struct {
	Type     BraceType
	Height   float64
	Pressure float64
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("data not available for %s at height %.2f m and pressure %g kN/m²",
		e.Type, e.Height, e.Pressure)
}

func (e *DataGapError) Is(target error) bool { return target == ErrDataGap }

// Evaluate looks up or interpolates the loads of a brace type in the
// default catalog.
func Evaluate(braceType string, height, pressure float64) (LoadRecord, error) {
	return defaultCatalog.Evaluate(braceType, height, pressure)
}

// Evaluate returns the tabulated record when (height, pressure) is a grid
// point and a bilinear interpolation between the bracketing grid points
// otherwise.
func (c *Catalog) Evaluate(braceType string, height, pressure float64) (LoadRecord, error) {
	t, ok := c.tables[BraceType(braceType)]
	if !ok {
		return LoadRecord{}, &UnsupportedBraceTypeError{Type: braceType}
	}
	hMin, hMax := t.HeightRange()
	pMin, pMax := t.PressureRange()
	// written so that NaN fails the check
	if !(height >= hMin && height <= hMax && pressure >= pMin && pressure <= pMax) {
		return LoadRecord{}, &OutOfRangeError{
			Type:        t.Type,
			MinHeight:   hMin,
			MaxHeight:   hMax,
			MinPressure: pMin,
			MaxPressure: pMax,
		}
	}

	hLow, hHigh := bracket(t.Heights, height)
	pLow, pHigh := bracket(t.Pressures, pressure)

	if _, ok := t.Record(hHigh, pHigh); !ok {
		return LoadRecord{}, &DataGapError{Type: t.Type, Height: hHigh, Pressure: pHigh}
	}

	switch {
	case hLow == hHigh && pLow == pHigh:
		r, _ := t.Record(hLow, pLow)
		return r, nil
	case hLow == hHigh:
		lo, err := t.at(hLow, pLow)
		if err != nil {
			return LoadRecord{}, err
		}
		hi, _ := t.Record(hLow, pHigh)
		return lerpRecord(pressure, pLow, pHigh, lo, hi), nil
	case pLow == pHigh:
		lo, err := t.at(hLow, pLow)
		if err != nil {
			return LoadRecord{}, err
		}
		hi, _ := t.Record(hHigh, pLow)
		return lerpRecord(height, hLow, hHigh, lo, hi), nil
	}

	lowRow, err := t.rowAt(hLow, pressure, pLow, pHigh)
	if err != nil {
		return LoadRecord{}, err
	}
	highRow, err := t.rowAt(hHigh, pressure, pLow, pHigh)
	if err != nil {
		return LoadRecord{}, err
	}
	return lerpRecord(height, hLow, hHigh, lowRow, highRow), nil
}

// rowAt interpolates one height row along the pressure axis. A row without a
// value at pHigh keeps its pLow value.
func (t *Table) rowAt(h, pressure, pLow, pHigh float64) (LoadRecord, error) {
	lo, err := t.at(h, pLow)
	if err != nil {
		return LoadRecord{}, err
	}
	hi, ok := t.Record(h, pHigh)
	if !ok {
		return lo, nil
	}
	return lerpRecord(pressure, pLow, pHigh, lo, hi), nil
}

// at is Record with a DataGapError for holes below the checked corner.
func (t *Table) at(h, p float64) (LoadRecord, error) {
	r, ok := t.Record(h, p)
	if !ok {
		return LoadRecord{}, &DataGapError{Type: t.Type, Height: h, Pressure: p}
	}
	return r, nil
}

// bracket returns the greatest grid value <= x and the smallest >= x.
// xs is ascending and x lies within its bounds.
func bracket(xs []float64, x float64) (lo, hi float64) {
	lo, hi = xs[0], xs[len(xs)-1]
	for _, v := range xs {
		if v <= x {
			lo = v
		}
		if v >= x {
			hi = v
			break
		}
	}
	return lo, hi
}

func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

func lerpRecord(x, x0, x1 float64, r0, r1 LoadRecord) LoadRecord {
	return LoadRecord{
		E:  lerp(x, x0, x1, r0.E, r1.E),
		Z:  lerp(x, x0, x1, r0.Z, r1.Z),
		V1: lerp(x, x0, x1, r0.V1, r1.V1),
		V2: lerp(x, x0, x1, r0.V2, r1.V2),
		F:  lerp(x, x0, x1, r0.F, r1.F),
	}
}

type Input struct {
	BraceType    string  `json:"brace_type"`
	HeightM      float64 `json:"height_m"`
	PressureKNM2 float64 `json:"pressure_kn_m2"`
}

// Final holds the per-meter loads multiplied by the width of influence.
type Final struct {
	ZKN  float64 `json:"z_kn"`
	V1KN float64 `json:"v1_kn"`
	V2KN float64 `json:"v2_kn"`
	FMM  float64 `json:"f_mm"`
}

type Result struct {
	BraceType    string     `json:"brace_type"`
	HeightM      float64    `json:"height_m"`
	PressureKNM2 float64    `json:"pressure_kn_m2"`
	Loads        LoadRecord `json:"loads"`
	Final        Final      `json:"final"`
	Interpolated bool       `json:"interpolated"`
	Provisional  bool       `json:"provisional"`
	Messages     []Message  `json:"messages"`
}

func FinalValues(r LoadRecord) Final {
	return Final{
		ZKN:  r.Z * r.E,
		V1KN: r.V1 * r.E,
		V2KN: r.V2 * r.E,
		FMM:  r.F * r.E,
	}
}

func Calculate(in Input) (Result, error) {
	return defaultCatalog.Calculate(in)
}

// Calculate evaluates the loads and, on success, the bracing rules for them.
func (c *Catalog) Calculate(in Input) (Result, error) {
	loads, err := c.Evaluate(in.BraceType, in.HeightM, in.PressureKNM2)
	if err != nil {
		return Result{}, err
	}
	t := c.tables[BraceType(in.BraceType)]
	_, exact := t.Record(in.HeightM, in.PressureKNM2)
	hLow, hHigh := bracket(t.Heights, in.HeightM)
	provisional := t.Provisional(hLow) || t.Provisional(hHigh)

	messages := Rules(in.BraceType, in.HeightM, loads.E)
	if provisional {
		messages = append(messages, Message{Warning, msgProvisional})
	}
	return Result{
		BraceType:    in.BraceType,
		HeightM:      in.HeightM,
		PressureKNM2: in.PressureKNM2,
		Loads:        loads,
		Final:        FinalValues(loads),
		Interpolated: !exact,
		Provisional:  provisional,
		Messages:     messages,
	}, nil
}
