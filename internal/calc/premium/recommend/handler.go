package recommend

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ansel1/merry"

	"braceframe/internal/calc/brace"
)

type Handler struct {
	Catalog *brace.Catalog
}

func (h *Handler) BraceTypes(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := BraceTypes(h.Catalog, input)
	switch {
	case errors.Is(err, ErrNoOption):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(res)
		return
	case err != nil:
		brace.WriteError(w, r, merry.Wrap(err).WithHTTPCode(http.StatusBadRequest))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
