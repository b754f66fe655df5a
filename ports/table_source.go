package ports

import "enefviz/domain/survey"

// TableSource provides read-only access to one tabular input file
type TableSource interface {
	// Path names the file behind the source, for logs and manifests
	Path() string
	ReadTable() (*survey.Table, error)
}

// TableOpener opens the source for a path. The dashboard uses it to load the
// per-variable files without knowing their format.
type TableOpener func(path string, dropIndex bool) TableSource
