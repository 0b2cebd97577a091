// Package domain defines the normalized domain types for Bounteer hiring intents.
// These types represent the core concepts independent of the Directus API structure.
package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownColumn indicates a column name outside the five known columns.
var ErrUnknownColumn = errors.New("unknown column")

// Column identifies one of the five workflow columns on the dashboard.
type Column string

const (
	ColumnSignal    Column = "signal"
	ColumnActioned  Column = "actioned"
	ColumnHidden    Column = "hidden"
	ColumnCompleted Column = "completed"
	ColumnAborted   Column = "aborted"
)

// Columns lists the dashboard columns in display order.
var Columns = []Column{ColumnSignal, ColumnActioned, ColumnCompleted, ColumnAborted, ColumnHidden}

// Status is the stored per-user state of an intent. Signal has no stored
// status: an intent with no state row is in the signal column.
type Status string

const (
	StatusActioned  Status = "actioned"
	StatusHidden    Status = "hidden"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// StatusForColumn maps a target column to the status value stored in its
// state row. The signal column maps to ok=false: moving there means deleting
// the state row rather than writing one.
func StatusForColumn(col Column) (Status, bool) {
	switch col {
	case ColumnActioned:
		return StatusActioned, true
	case ColumnHidden:
		return StatusHidden, true
	case ColumnCompleted:
		return StatusCompleted, true
	case ColumnAborted:
		return StatusAborted, true
	default:
		return "", false
	}
}

// ColumnForStatus maps a stored status back to its column.
func ColumnForStatus(status Status) (Column, bool) {
	switch status {
	case StatusActioned:
		return ColumnActioned, true
	case StatusHidden:
		return ColumnHidden, true
	case StatusCompleted:
		return ColumnCompleted, true
	case StatusAborted:
		return ColumnAborted, true
	default:
		return "", false
	}
}

// Intent represents one hiring intent record in a normalized format.
// The client only ever holds read-only snapshots of these; all writes go
// through state rows.
type Intent struct {
	ID             int      // Directus record ID
	Title          string   // Role title (e.g., "Senior Backend Engineer")
	Company        string   // Hiring company name
	Category       string   // Intent category tag (e.g., "engineering")
	Location       string   // Free-text location
	Skills         []string // Skill tags
	PredictedStart string   // Predicted hiring window start (ISO8601 date)
	Space          int      // Workspace the intent belongs to
	URL            string   // Source URL (job post, company page), may be empty
	CreatedAt      string   // ISO8601 timestamp of creation
	Actions        []Action // Associated action sub-records, oldest first
}

// StateRow is the per-(user, intent) record that places an intent in a
// column. At most one active row exists per pair.
type StateRow struct {
	ID        int    // Directus record ID
	IntentID  int    // Intent this row refers to
	UserID    string // Directus user UUID (user_created)
	Status    Status // Stored column status
	Reason    string // Optional free-text reason, aborted moves only
	CreatedAt string // ISO8601 timestamp
}

// Space is a tenant/workspace partition of the intent dataset.
type Space struct {
	ID   int
	Name string
}

// ActionKind discriminates the closed set of action payload variants.
type ActionKind string

const (
	ActionLinkedIn ActionKind = "linkedin"
	ActionCall     ActionKind = "call"
	ActionEmail    ActionKind = "email"
	ActionManual   ActionKind = "manual"
)

// Action is one outreach action attached to an intent. It is a tagged
// union: Kind selects which payload fields are meaningful.
type Action struct {
	ID       int
	IntentID int
	Kind     ActionKind

	// linkedin
	ProfileURL string
	// call
	Phone string
	// email
	Subject string
	Body    string
	// manual
	Note string

	Done      bool
	CreatedAt string
}

// Summary renders a one-line description of the action for list display.
// Each variant has its own rendering; unknown kinds are surfaced explicitly
// rather than guessed from payload shape.
func (a Action) Summary() string {
	switch a.Kind {
	case ActionLinkedIn:
		return fmt.Sprintf("LinkedIn outreach: %s", a.ProfileURL)
	case ActionCall:
		return fmt.Sprintf("Call %s", a.Phone)
	case ActionEmail:
		if a.Subject != "" {
			return fmt.Sprintf("Email: %s", a.Subject)
		}
		return "Email"
	case ActionManual:
		return a.Note
	default:
		return fmt.Sprintf("(unknown action kind %q)", string(a.Kind))
	}
}
