package models

import "errors"

var (
	// ErrUnknownFormat is returned for file extensions without a codec or loader.
	ErrUnknownFormat = errors.New("polyedit: unknown file format")

	// ErrMeshNotFound is returned when a mesh reference matches no mesh.
	ErrMeshNotFound = errors.New("polyedit: mesh not found")

	// ErrNoSelection is returned by callers that need a vertex selection.
	ErrNoSelection = errors.New("polyedit: no vertices selected")
)
