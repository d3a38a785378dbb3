package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/bookmarkplus/internal/bookmarks"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

type createBookmarkRequest struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	FolderID string   `json:"folderId"`
	Tags     []string `json:"tags"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

type refreshResponse struct {
	Refreshed int `json:"refreshed"`
}

func bookmarkRoutes(r chi.Router, d Deps) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Get("/", ListBookmarks(d))
		r.Post("/", CreateBookmark(d))
		r.Post("/refresh-favicons", RefreshFavicons(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetBookmark(d))
			r.Patch("/", UpdateBookmark(d))
			r.Delete("/", DeleteBookmark(d))
			r.Post("/visit", VisitBookmark(d))
			r.Post("/favicon", RefreshFavicon(d))
			r.Post("/tags", AddTag(d))
			r.Delete("/tags/{tag}", RemoveTag(d))
		})
	})
}

// ListBookmarks returns every bookmark, or the ones in ?folder= or carrying
// any of the ?tag= values.
func ListBookmarks(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var list []model.Bookmark
		switch {
		case q.Get("folder") != "":
			list = d.Manager.BookmarksInFolder(q.Get("folder"))
		case len(q["tag"]) > 0:
			list = d.Manager.SearchByTags(q["tag"])
		default:
			list = d.Manager.Bookmarks()
		}
		if list == nil {
			list = []model.Bookmark{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateBookmark(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		b, err := d.Manager.CreateBookmark(r.Context(), model.NewBookmarkParams{
			Title:    req.Title,
			URL:      req.URL,
			FolderID: req.FolderID,
			Tags:     req.Tags,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func GetBookmark(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Manager.Bookmark(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func UpdateBookmark(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd bookmarks.BookmarkUpdate
		if err := decodeBody(w, r, &upd); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		b, err := d.Manager.UpdateBookmark(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := d.Manager.DeleteBookmark(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !ok {
			writeError(w, d.Logger, bookmarks.ErrBookmarkNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func VisitBookmark(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Manager.UpdateBookmarkOnVisit(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func RefreshFavicon(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ok, err := d.Manager.RefreshFavicon(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !ok {
			writeError(w, d.Logger, bookmarks.ErrBookmarkNotFound)
			return
		}
		b, err := d.Manager.Bookmark(id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func RefreshFavicons(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Manager.RefreshFavicons(r.Context(), d.RefreshConcurrency, nil)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, refreshResponse{Refreshed: n})
	}
}

func AddTag(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		id := chi.URLParam(r, "id")
		if err := d.Manager.AddTagToBookmark(r.Context(), id, req.Tag); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		b, err := d.Manager.Bookmark(id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func RemoveTag(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tag := pathParam(r, "tag")
		if err := d.Manager.RemoveTagFromBookmark(r.Context(), id, tag); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		b, err := d.Manager.Bookmark(id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// pathParam returns the unescaped value of a URL parameter. chi matches on
// the raw path when the request carries escaped characters.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		v = u
	}
	return strings.TrimSpace(v)
}
