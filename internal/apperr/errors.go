// Package apperr holds the sentinel errors shared across the service layers.
package apperr

import "errors"

var (
	// ErrDataContractViolation means a store record is missing an attribute this service requires.
	ErrDataContractViolation = errors.New("data contract violation")
	// ErrMissingSeedNode means a 1-hop expansion did not contain the node it was seeded from.
	ErrMissingSeedNode = errors.New("missing seed node")
	// ErrConnection means the graph store could not be reached or refused the credentials.
	ErrConnection      = errors.New("graph store unavailable")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrHistoryDisabled means expansion history was requested while it is switched off.
var ErrHistoryDisabled = errors.New("expansion history is disabled")
