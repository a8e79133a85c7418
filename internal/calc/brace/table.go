package brace

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed braceframes.yaml
var defaultTablesYAML []byte

type BraceType string

const (
	TypeAB  BraceType = "SB-A+B"
	TypeSB2 BraceType = "SB-2"
)

// LoadRecord holds the tabulated values per meter of frame.
type LoadRecord struct {
	E  float64 `json:"e" yaml:"e"`   // width of influence, m
	Z  float64 `json:"z" yaml:"z"`   // anchor tension, kN/m
	V1 float64 `json:"v1" yaml:"v1"` // spindle force, kN/m
	V2 float64 `json:"v2" yaml:"v2"` // spindle force, kN/m
	F  float64 `json:"f" yaml:"f"`   // deflection, mm/m
}

type gridKey struct {
	height   float64
	pressure float64
}

// Table is the load table of one brace type. It is read-only once built.
type Table struct {
	Type      BraceType
	Heights   []float64
	Pressures []float64
	records   map[gridKey]LoadRecord

	// heights of rows not yet checked against the manufacturer's tables
	provisional map[float64]bool
}

// Record returns the tabulated record at an exact grid point.
func (t *Table) Record(height, pressure float64) (LoadRecord, bool) {
	r, ok := t.records[gridKey{height, pressure}]
	return r, ok
}

func (t *Table) HeightRange() (lo, hi float64) {
	return t.Heights[0], t.Heights[len(t.Heights)-1]
}

func (t *Table) PressureRange() (lo, hi float64) {
	return t.Pressures[0], t.Pressures[len(t.Pressures)-1]
}

// Provisional reports whether the row at height is marked provisional.
func (t *Table) Provisional(height float64) bool {
	return t.provisional[height]
}

// Len is the number of populated grid points.
func (t *Table) Len() int {
	return len(t.records)
}

type Catalog struct {
	tables map[BraceType]*Table
}

func (c *Catalog) Table(t BraceType) (*Table, bool) {
	tbl, ok := c.tables[t]
	return tbl, ok
}

func (c *Catalog) Types() []BraceType {
	types := make([]BraceType, 0, len(c.tables))
	for t := range c.tables {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

type fileRow struct {
	Height      float64                `yaml:"height"`
	Provisional bool                   `yaml:"provisional"`
	Loads       map[float64]LoadRecord `yaml:"loads"`
}

type fileTable struct {
	Type      BraceType `yaml:"type"`
	Heights   []float64 `yaml:"heights"`
	Pressures []float64 `yaml:"pressures"`
	Rows      []fileRow `yaml:"rows"`
}

type tablesFile struct {
	Tables []fileTable `yaml:"tables"`
}

// ParseCatalog decodes load tables from YAML and checks that every row and
// pressure key belongs to the declared axes of its type.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode load tables: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("no load tables defined")
	}
	c := &Catalog{tables: make(map[BraceType]*Table, len(f.Tables))}
	for _, ft := range f.Tables {
		tbl, err := buildTable(ft)
		if err != nil {
			return nil, err
		}
		if _, dup := c.tables[tbl.Type]; dup {
			return nil, fmt.Errorf("duplicate load table for %s", tbl.Type)
		}
		c.tables[tbl.Type] = tbl
	}
	return c, nil
}

func buildTable(ft fileTable) (*Table, error) {
	if ft.Type == "" {
		return nil, fmt.Errorf("load table without type")
	}
	if err := checkAxis(ft.Heights); err != nil {
		return nil, fmt.Errorf("%s heights: %w", ft.Type, err)
	}
	if err := checkAxis(ft.Pressures); err != nil {
		return nil, fmt.Errorf("%s pressures: %w", ft.Type, err)
	}
	tbl := &Table{
		Type:        ft.Type,
		Heights:     ft.Heights,
		Pressures:   ft.Pressures,
		records:     make(map[gridKey]LoadRecord),
		provisional: make(map[float64]bool),
	}
	seen := make(map[float64]bool, len(ft.Rows))
	for _, row := range ft.Rows {
		if !contains(ft.Heights, row.Height) {
			return nil, fmt.Errorf("%s: row height %.2f m is not a declared height", ft.Type, row.Height)
		}
		if seen[row.Height] {
			return nil, fmt.Errorf("%s: duplicate row for height %.2f m", ft.Type, row.Height)
		}
		seen[row.Height] = true
		if row.Provisional {
			tbl.provisional[row.Height] = true
		}
		for p, rec := range row.Loads {
			if !contains(ft.Pressures, p) {
				return nil, fmt.Errorf("%s: pressure %g kN/m² at %.2f m is not a declared pressure", ft.Type, p, row.Height)
			}
			if rec.E < 0 || rec.Z < 0 || rec.V1 < 0 || rec.V2 < 0 || rec.F < 0 {
				return nil, fmt.Errorf("%s: negative load at %.2f m / %g kN/m²", ft.Type, row.Height, p)
			}
			tbl.records[gridKey{row.Height, p}] = rec
		}
	}
	if len(tbl.records) == 0 {
		return nil, fmt.Errorf("%s: table has no records", ft.Type)
	}
	return tbl, nil
}

func checkAxis(xs []float64) error {
	if len(xs) == 0 {
		return fmt.Errorf("empty")
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("not strictly ascending at %g", xs[i])
		}
	}
	return nil
}

func contains(xs []float64, x float64) bool {
	i := sort.SearchFloat64s(xs, x)
	return i < len(xs) && xs[i] == x
}

// LoadCatalogFile reads load tables from a YAML file on disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

var defaultCatalog = mustParseCatalog(defaultTablesYAML)

func mustParseCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the catalog built from the embedded load tables.
func Default() *Catalog {
	return defaultCatalog
}
