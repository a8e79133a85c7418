package recommend

import (
	"errors"
	"math"
	"sort"

	"braceframe/internal/calc/brace"
)

type Input struct {
	HeightM      float64 `json:"height_m"`
	PressureKNM2 float64 `json:"pressure_kn_m2"`
	WallLengthM  float64 `json:"wall_length_m"`
}

type Option struct {
	BraceType string           `json:"brace_type"`
	Loads     brace.LoadRecord `json:"loads"`
	Frames    int              `json:"frames,omitempty"`
	Messages  []brace.Message  `json:"messages"`
}

type Result struct {
	Options  []Option `json:"options"`
	Rejected []string `json:"rejected"`
	Notes    string   `json:"notes"`
}

var (
	ErrNoOption     = errors.New("no brace frame type covers the requested height and pressure")
	ErrInvalidInput = errors.New("height and pressure must be positive, wall length must not be negative")
)

// BraceTypes evaluates every type of the catalog and returns the ones that
// can take the given height and pressure, widest permissible spacing first.
func BraceTypes(c *brace.Catalog, in Input) (Result, error) {
	if in.HeightM <= 0 || in.PressureKNM2 <= 0 || in.WallLengthM < 0 {
		return Result{}, ErrInvalidInput
	}
	if c == nil {
		c = brace.Default()
	}
	res := Result{Options: []Option{}, Rejected: []string{}}
	for _, t := range c.Types() {
		r, err := c.Calculate(brace.Input{BraceType: string(t), HeightM: in.HeightM, PressureKNM2: in.PressureKNM2})
		if err != nil {
			res.Rejected = append(res.Rejected, err.Error())
			continue
		}
		res.Options = append(res.Options, Option{
			BraceType: r.BraceType,
			Loads:     r.Loads,
			Frames:    frames(in.WallLengthM, r.Loads.E),
			Messages:  r.Messages,
		})
	}
	if len(res.Options) == 0 {
		return res, ErrNoOption
	}
	sort.SliceStable(res.Options, func(i, j int) bool {
		return res.Options[i].Loads.E > res.Options[j].Loads.E
	})
	res.Notes = "Ordered by permissible width of influence; frame counts assume one frame at each end of the wall."
	return res, nil
}

// frames is the number of frames needed along a wall when neighbouring
// frames are at most e apart.
func frames(wallLength, e float64) int {
	if wallLength <= 0 || e <= 0 {
		return 0
	}
	return int(math.Ceil(wallLength/e-1e-9)) + 1
}
