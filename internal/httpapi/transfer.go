package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/bookmarkplus/internal/exporter"
	"github.com/nikbrunner/bookmarkplus/internal/importer"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

func transferRoutes(r chi.Router, d Deps) {
	r.Get("/export", Export(d))
	r.Post("/import", Import(d))
}

// Export downloads the whole dataset, as JSON or with ?format=html as a
// Netscape bookmark file.
func Export(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := d.Manager.Export()
		date := time.Now().Format("2006-01-02")

		if r.URL.Query().Get("format") == "html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookmark+-export-%s.html"`, date))
			_, _ = io.WriteString(w, exporter.ExportHTML(data))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookmark+-export-%s.json"`, date))
		if err := exporter.WriteJSON(w, data); err != nil {
			d.Logger.Warn("export write failed", logger.Error(err))
		}
	}
}

// Import applies the request body. ?format= selects json (default),
// netscape or homepage; ?merge= and ?validateVersion= map to the import
// options.
func Import(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := importOptions(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeMessage(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}

		var result model.ImportResult
		switch importer.Format(r.URL.Query().Get("format")) {
		case "", importer.FormatJSON:
			result = d.Manager.Import(r.Context(), raw, opts)
		case importer.FormatNetscape:
			doc, err := importer.ParseNetscape(bytes.NewReader(raw), time.Now())
			if err != nil {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			result = d.Manager.ImportDocument(r.Context(), doc, opts)
		case importer.FormatHomepage:
			doc, err := importer.ParseHomepage(bytes.NewReader(raw), time.Now())
			if err != nil {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			result = d.Manager.ImportDocument(r.Context(), doc, opts)
		default:
			writeMessage(w, http.StatusBadRequest, "unknown import format")
			return
		}

		status := http.StatusOK
		if !result.Success {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, result)
	}
}

func importOptions(r *http.Request) (model.ImportOptions, error) {
	opts := model.DefaultImportOptions()
	q := r.URL.Query()
	if v := q.Get("merge"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("merge: %w", err)
		}
		opts.Merge = b
	}
	if v := q.Get("validateVersion"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("validateVersion: %w", err)
		}
		opts.ValidateVersion = b
	}
	return opts, nil
}
