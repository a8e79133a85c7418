package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ansel1/merry"

	"braceframe/internal/calc/brace"
)

var ErrNoItems = errors.New("no items")

type Handler struct {
	Catalog *brace.Catalog
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(h.Catalog, input)
	if err != nil {
		if errors.Is(err, ErrNoItems) {
			brace.WriteError(w, r, merry.Wrap(err).WithHTTPCode(http.StatusBadRequest))
			return
		}
		brace.WriteError(w, r, brace.StatusError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
