// Package lifecycle holds the asset state machine. It is pure: callers load
// the current state, ask Next for the target state and persist it themselves.
package lifecycle

import (
	"fmt"

	"github.com/xelth-com/eckassets/internal/apperr"
)

// State of an asset row
type State string

const (
	Active   State = "active"
	Archived State = "archived"
	Removed  State = "removed" // terminal, the row no longer exists
)

// Action requested against an asset
type Action string

const (
	Archive         Action = "archive"
	Restore         Action = "restore"
	PermanentDelete Action = "permanent_delete"
)

// Precondition messages surfaced to callers
const (
	ReasonNotArchived    = "asset is not archived"
	ReasonMustArchive    = "asset must be archived before permanent deletion"
	ReasonAlreadyRemoved = "asset has been permanently removed"
)

// StateOf maps the stored is_archived flag to a State.
func StateOf(isArchived bool) State {
	if isArchived {
		return Archived
	}
	return Active
}

// Next returns the state reached by applying a to from.
// Archiving an archived asset is allowed and leaves it archived.
func Next(from State, a Action) (State, error) {
	if from == Removed {
		return Removed, apperr.Precondition(ReasonAlreadyRemoved)
	}

	switch a {
	case Archive:
		return Archived, nil
	case Restore:
		if from != Archived {
			return from, apperr.Precondition(ReasonNotArchived)
		}
		return Active, nil
	case PermanentDelete:
		if from != Archived {
			return from, apperr.Precondition(ReasonMustArchive)
		}
		return Removed, nil
	}

	return from, fmt.Errorf("unknown lifecycle action %q", a)
}
