package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"braceframe/internal/calc/brace"
	"braceframe/internal/calc/report"
	"braceframe/internal/config"
)

type options struct {
	braceType     string
	height        float64
	pressure      float64
	projectNumber string
	projectName   string
	pdf           string
	list          bool
}

func gatherOptions(args []string) (options, error) {
	o := options{}
	fs := flag.NewFlagSet("bracecalc", flag.ContinueOnError)
	fs.StringVar(&o.braceType, "type", "SB-A+B", "Brace frame type")
	fs.Float64Var(&o.height, "height", 5.50, "Concreting height (m)")
	fs.Float64Var(&o.pressure, "pressure", 60, "Fresh concrete pressure (kN/m²)")
	fs.StringVar(&o.projectNumber, "project-number", "PRJ-001", "Project number printed on the report")
	fs.StringVar(&o.projectName, "project-name", "Sample Project", "Project name printed on the report")
	fs.StringVar(&o.pdf, "pdf", "", "Write the PDF report to this file, or to the default report name when set to \"auto\"")
	fs.BoolVar(&o.list, "list", false, "List the supported brace frame types and their ranges")
	err := fs.Parse(args)
	return o, err
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	o, err := gatherOptions(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration")
	}
	logrus.SetLevel(cfg.LogLevel)

	catalog := brace.Default()
	if cfg.BraceTablesFile != "" {
		if catalog, err = brace.LoadCatalogFile(cfg.BraceTablesFile); err != nil {
			logrus.WithError(err).Fatal("load tables")
		}
	}

	if o.list {
		printTypes(os.Stdout, catalog)
		return
	}

	res, err := catalog.Calculate(brace.Input{BraceType: o.braceType, HeightM: o.height, PressureKNM2: o.pressure})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printResult(os.Stdout, res)

	if o.pdf == "" {
		return
	}
	path := o.pdf
	if path == "auto" {
		path = report.FileName(o.projectName)
	}
	f, err := os.Create(path)
	if err != nil {
		logrus.WithError(err).Fatal("create report file")
	}
	rd := &report.Renderer{
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		Logo:           report.NewLogoCache(cfg.LogoPath, cfg.LogoURLs),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = rd.Render(ctx, f, report.Report{Result: res, ProjectNumber: o.projectNumber, ProjectName: o.projectName})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logrus.WithError(err).Fatal("write report")
	}
	logrus.WithField("file", path).Info("report written")
}

func printTypes(out io.Writer, c *brace.Catalog) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tHEIGHT (m)\tPRESSURE (kN/m²)\tGRID POINTS")
	for _, t := range c.Types() {
		tbl, _ := c.Table(t)
		hMin, hMax := tbl.HeightRange()
		pMin, pMax := tbl.PressureRange()
		fmt.Fprintf(w, "%s\t%.2f-%.2f\t%g-%g\t%d\n", t, hMin, hMax, pMin, pMax, tbl.Len())
	}
	w.Flush()
}

var severityLabel = map[brace.Severity]string{
	brace.Info:     "INFO",
	brace.Required: "REQUIRED",
	brace.Warning:  "WARNING",
}

func printResult(out io.Writer, res brace.Result) {
	l, fin := res.Loads, res.Final
	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "Brace Frame:\t%s\n", res.BraceType)
	fmt.Fprintf(w, "Concreting Height:\t%.2f\tm\n", res.HeightM)
	fmt.Fprintf(w, "Fresh Concrete Pressure:\t%.2f\tkN/m²\n", res.PressureKNM2)
	if res.Interpolated {
		fmt.Fprintf(w, "\t(interpolated)\n")
	}
	fmt.Fprintf(w, "\t\t\n")
	fmt.Fprintf(w, "Calculated Loads (Per Meter)\t\t\n")
	fmt.Fprintf(w, "Permissible Width of Influence (e)\t%8.2f\tm\n", l.E)
	fmt.Fprintf(w, "Anchor Tension Force (Z)\t%8.2f\tkN/m\n", l.Z)
	fmt.Fprintf(w, "Spindle Force V1\t%8.2f\tkN/m\n", l.V1)
	fmt.Fprintf(w, "Spindle Force V2\t%8.2f\tkN/m\n", l.V2)
	fmt.Fprintf(w, "Deflection (f)\t%8.2f\tmm/m\n", l.F)
	fmt.Fprintf(w, "\t\t\n")
	fmt.Fprintf(w, "Final Values Based on %.2f m Spacing\t\t\n", l.E)
	fmt.Fprintf(w, "Anchor Tension Force (Z)\t%8.2f\tkN\n", fin.ZKN)
	fmt.Fprintf(w, "Spindle Force V1\t%8.2f\tkN\n", fin.V1KN)
	fmt.Fprintf(w, "Spindle Force V2\t%8.2f\tkN\n", fin.V2KN)
	fmt.Fprintf(w, "Deflection (f)\t%8.2f\tmm\n", fin.FMM)
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Validation and Notes")
	for _, m := range res.Messages {
		fmt.Fprintf(out, "[%s] %s\n", severityLabel[m.Severity], m.Text)
	}
}
