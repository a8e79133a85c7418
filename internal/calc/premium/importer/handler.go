package importer

import (
	"encoding/json"
	"net/http"

	"github.com/ansel1/merry"
	"github.com/sirupsen/logrus"

	"braceframe/internal/calc/brace"
)

const MaxUploadSize = 10 << 20 // 10MB

type Handler struct {
	Catalog *brace.Catalog
}

// Brace evaluates an uploaded workbook. With ?format=xlsx the results are
// returned as a workbook instead of JSON.
func (h *Handler) Brace(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := Import(file, h.Catalog)
	if err != nil {
		brace.WriteError(w, r, merry.Wrap(err).WithHTTPCode(http.StatusBadRequest))
		return
	}
	log := logrus.WithFields(logrus.Fields{"count": res.Count, "skipped": len(res.Skipped)})
	if err := res.Err(); err != nil {
		log = log.WithError(err)
	}
	log.Info("workbook imported")

	if r.URL.Query().Get("format") != "xlsx" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
		return
	}

	f, err := Export(res.Results)
	if err != nil {
		brace.WriteError(w, r, merry.Prepend(err, "export").WithHTTPCode(http.StatusInternalServerError))
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"brace_results.xlsx\"")
	if err := f.Write(w); err != nil {
		logrus.WithError(err).Error("write workbook")
	}
}
