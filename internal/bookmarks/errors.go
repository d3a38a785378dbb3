package bookmarks

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateURL     = errors.New("bookmark already exists for this URL")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidImport    = errors.New("invalid import data format")
	ErrVersionTooNew    = errors.New("import data version is newer than the current version")
)

// DuplicateURLError reports a URL collision and names the bookmark that
// already owns the URL.
type DuplicateURLError struct {
	URL   string
	Title string
}

func (e *DuplicateURLError) Error() string {
	return fmt.Sprintf("bookmark already exists for this URL: %q", e.Title)
}

func (e *DuplicateURLError) Is(target error) bool {
	return target == ErrDuplicateURL
}
