package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/bookmarkplus/internal/search"
)

func tagRoutes(r chi.Router, d Deps) {
	r.Get("/tags", ListTags(d))
	r.Post("/tags", RegisterTag(d))
	r.Get("/search", Search(d))
}

func ListTags(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Manager.Tags())
	}
}

func RegisterTag(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := d.Manager.RegisterTag(r.Context(), req.Tag); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, d.Manager.Tags())
	}
}

// Search runs the prioritized global search over ?q=. With mode=fuzzy the
// titles are matched as a subsequence and ranked by score instead.
func Search(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		if r.URL.Query().Get("mode") == "fuzzy" {
			results := d.Manager.FuzzySearch(query)
			if results == nil {
				results = []search.FuzzyResult{}
			}
			writeJSON(w, http.StatusOK, results)
			return
		}

		results := d.Manager.GlobalSearch(query)
		if results == nil {
			results = []search.Result{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}
