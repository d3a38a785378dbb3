package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/bookmarkplus/internal/bookmarks"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

type renameFolderRequest struct {
	Name string `json:"name"`
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type reorderResponse struct {
	Reordered bool `json:"reordered"`
}

func folderRoutes(r chi.Router, d Deps) {
	r.Route("/folders", func(r chi.Router) {
		r.Get("/", ListFolders(d))
		r.Post("/", CreateFolder(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetFolder(d))
			r.Patch("/", RenameFolder(d))
			r.Delete("/", DeleteFolder(d))
			r.Get("/items", FolderItems(d))
			r.Get("/path", FolderPath(d))
			r.Get("/tree", FolderTree(d))
			r.Post("/reorder", ReorderBookmarks(d))
		})
	})
}

func ListFolders(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Manager.Folders())
	}
}

func CreateFolder(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFolderRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		f, err := d.Manager.CreateFolder(r.Context(), req.Name, req.ParentID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

func GetFolder(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := d.Manager.Folder(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

func RenameFolder(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renameFolderRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		id := chi.URLParam(r, "id")
		ok, err := d.Manager.UpdateFolder(r.Context(), id, req.Name)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !ok {
			writeRefused(w, d, id, "the root folder cannot be renamed")
			return
		}
		f, err := d.Manager.Folder(id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

// DeleteFolder removes the folder and the bookmarks directly inside it.
func DeleteFolder(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ok, err := d.Manager.DeleteFolder(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if !ok {
			writeRefused(w, d, id, "the root folder cannot be deleted")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func FolderItems(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := d.Manager.Folder(id); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		items := d.Manager.FolderContents(id)
		if items == nil {
			items = []model.Item{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func FolderPath(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := d.Manager.Folder(id); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, d.Manager.FolderPath(id))
	}
}

func FolderTree(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree := d.Manager.FolderHierarchy(chi.URLParam(r, "id"))
		if tree == nil {
			writeError(w, d.Logger, bookmarks.ErrFolderNotFound)
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}

func ReorderBookmarks(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		ok, err := d.Manager.ReorderBookmarks(r.Context(), chi.URLParam(r, "id"), req.From, req.To)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusConflict
		}
		writeJSON(w, status, reorderResponse{Reordered: ok})
	}
}

// writeRefused answers a false structural result: 404 for an unknown folder,
// 409 otherwise.
func writeRefused(w http.ResponseWriter, d Deps, id, msg string) {
	if _, err := d.Manager.Folder(id); err != nil {
		writeError(w, d.Logger, err)
		return
	}
	writeMessage(w, http.StatusConflict, msg)
}
