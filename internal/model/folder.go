package model

import "slices"

// RootFolderID is the id of the permanent top-level folder.
const RootFolderID = "root"

// RootFolderName is the display name given to a seeded root folder.
const RootFolderName = "/"

// Folder represents a container for bookmarks and other folders.
type Folder struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID *string  `json:"parentId"` // nil only for the root folder
	Children []string `json:"children"`
	Kind     Kind     `json:"type"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name     string
	ParentID string
}

// NewFolder creates a Folder with generated UUID.
func NewFolder(params NewFolderParams) Folder {
	parentID := params.ParentID
	if parentID == "" {
		parentID = RootFolderID
	}

	return Folder{
		ID:       GenerateUUID(),
		Name:     params.Name,
		ParentID: &parentID,
		Children: []string{},
		Kind:     KindFolder,
	}
}

// NewRootFolder returns the seeded root folder.
func NewRootFolder() Folder {
	return Folder{
		ID:       RootFolderID,
		Name:     RootFolderName,
		ParentID: nil,
		Children: []string{},
		Kind:     KindFolder,
	}
}

// IsRoot reports whether f is the protected root folder.
func (f Folder) IsRoot() bool {
	return f.ID == RootFolderID
}

// Parent returns the parent id, or "" for the root.
func (f Folder) Parent() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// Clone returns a deep copy of the folder.
func (f Folder) Clone() Folder {
	if f.ParentID != nil {
		p := *f.ParentID
		f.ParentID = &p
	}
	f.Children = slices.Clone(f.Children)
	if f.Children == nil {
		f.Children = []string{}
	}
	return f
}
