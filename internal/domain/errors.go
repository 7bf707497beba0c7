package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrInvalidRequest       = errors.New("invalid request")
	ErrMissingCustomScene   = errors.New("custom background requires a scene description")
	ErrInvalidReferencePath = errors.New("invalid reference path")

	ErrAnalysisFailed  = errors.New("product analysis failed")
	ErrRenderFailed    = errors.New("render failed")
	ErrEmptyRender     = errors.New("renderer returned no image")
	ErrCompositeFailed = errors.New("logo composite failed")
	ErrAllAnglesFailed = errors.New("all angles failed")

	ErrTaskSettled    = errors.New("angle task already settled")
	ErrTaskNotStarted = errors.New("angle task not started")
)
