// Package apperr defines the typed error taxonomy shared by storage, services and adapters.
//
// Every error that callers are expected to react to carries a Kind. Kinds survive
// fmt.Errorf("...: %w") wrapping, so callers test them with IsKind or KindOf rather
// than string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error.
type Kind string

const (
	// InvalidArgument means the caller supplied a value violating a stated precondition.
	InvalidArgument Kind = "INVALID_ARGUMENT"

	// AlreadyExists means a unique-key collision on insert.
	AlreadyExists Kind = "ALREADY_EXISTS"

	// ReferentialIntegrity means an insert referenced a parent row that doesn't exist.
	ReferentialIntegrity Kind = "REFERENTIAL_INTEGRITY"

	// StaleWar means a war older than the latest one on record was offered.
	StaleWar Kind = "STALE_WAR"

	// CannotCreateTicketForWar means a ticket was filed against a war that isn't current.
	CannotCreateTicketForWar Kind = "CANNOT_CREATE_TICKET_FOR_WAR"

	// NotFound means a keyed lookup found no row.
	NotFound Kind = "NOT_FOUND"

	// NoData means a table expected to be populated is empty.
	NoData Kind = "NO_DATA"

	// StaleData means rows exist but none belong to the latest war.
	StaleData Kind = "STALE_DATA"

	// MapNotInCurrentWar means a map name isn't part of the latest war.
	MapNotInCurrentWar Kind = "MAP_NOT_IN_CURRENT_WAR"

	// MapNotFound means a ticket referenced a map that doesn't exist in the ticket's war.
	MapNotFound Kind = "MAP_NOT_FOUND"

	// DataCorruption means a structurally impossible state was observed.
	DataCorruption Kind = "DATA_CORRUPTION"

	// PermissionDenied means the acting user lacks the role for an action.
	PermissionDenied Kind = "PERMISSION_DENIED"
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Message string

	// WarNumber is the war the error concerns, when one applies.
	WarNumber int

	// MapName is the map the error concerns, when one applies.
	MapName string

	// LastSeenWar is the last war MapName was seen in. Zero means unknown.
	// Only set for MapNotInCurrentWar and best effort.
	LastSeenWar int

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// NewStaleWar reports a proposed war number older than the latest on record.
func NewStaleWar(proposed, latest int) *Error {
	return &Error{
		Kind:      StaleWar,
		Message:   fmt.Sprintf("cannot record war #%d; a newer entry already exists for war #%d", proposed, latest),
		WarNumber: proposed,
	}
}

// NewMapNotInCurrentWar reports a map missing from the latest war.
// lastSeen is zero when the map was never recorded.
func NewMapNotInCurrentWar(mapName string, currentWar, lastSeen int) *Error {
	seen := "unknown"
	if lastSeen > 0 {
		seen = fmt.Sprintf("war #%d", lastSeen)
	}
	return &Error{
		Kind:        MapNotInCurrentWar,
		Message:     fmt.Sprintf("map %s does not exist in current war #%d (last seen: %s)", mapName, currentWar, seen),
		WarNumber:   currentWar,
		MapName:     mapName,
		LastSeenWar: lastSeen,
	}
}
