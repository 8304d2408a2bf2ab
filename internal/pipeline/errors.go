package pipeline

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the change-tracking service cannot be reached
	// or answers with a non-success status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamProtocol is returned when an upstream response cannot be parsed.
	ErrUpstreamProtocol = errors.New("upstream protocol error")
	// ErrUnknownStageType is returned when no resolver handles a stage type.
	ErrUnknownStageType = errors.New("unknown stage type")
	// ErrEntityNotFound is returned when a catalog entity reference does not resolve.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrCatalogUnavailable is returned when the catalog cannot be listed or queried.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrProjectNotFound is returned when no reconciliation status exists for a project.
	ErrProjectNotFound = errors.New("project not found")
)
