package report

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/ansel1/merry"
	"github.com/sirupsen/logrus"

	"braceframe/internal/calc/brace"
)

type Input struct {
	brace.Input
	ProjectNumber string `json:"project_number"`
	ProjectName   string `json:"project_name"`
}

type Handler struct {
	Renderer *Renderer
	Catalog  *brace.Catalog
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.ProjectNumber == "" {
		input.ProjectNumber = "PRJ-001"
	}
	if input.ProjectName == "" {
		input.ProjectName = "Sample Project"
	}

	calc := brace.Calculate
	if h.Catalog != nil {
		calc = h.Catalog.Calculate
	}
	res, err := calc(input.Input)
	if err != nil {
		brace.WriteError(w, r, brace.StatusError(err))
		return
	}

	rd := h.Renderer
	if rd == nil {
		rd = &Renderer{}
	}
	var buf bytes.Buffer
	err = rd.Render(r.Context(), &buf, Report{
		Result:        res,
		ProjectNumber: input.ProjectNumber,
		ProjectName:   input.ProjectName,
	})
	if err != nil {
		brace.WriteError(w, r, merry.Prepend(err, "report generation error").WithHTTPCode(http.StatusInternalServerError))
		return
	}

	logrus.WithFields(logrus.Fields{
		"brace_type": res.BraceType,
		"project":    input.ProjectName,
		"bytes":      buf.Len(),
	}).Info("report generated")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": FileName(input.ProjectName)}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
