package model

import "time"

// Status represents request status
type Status string

const (
	StatusPending   Status = "pending"
	StatusProgress  Status = "progress"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Priority represents how urgently a request should be handled
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// EventKind tags a timeline event. Presentation (icons, colors) is resolved
// by the UI layer from this tag.
type EventKind string

const (
	EventReceived   EventKind = "received"
	EventDispatched EventKind = "dispatched"
	EventCompleted  EventKind = "completed"
	EventCancelled  EventKind = "cancelled"
)

// Role represents the kind of account
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
)

// View is the screen the session is currently on
type View string

const (
	ViewLogin   View = "login"
	ViewCitizen View = "citizen"
	ViewAdmin   View = "admin"
)

// ViewForRole returns the landing view for an authenticated role
func ViewForRole(r Role) View {
	if r == RoleAdmin {
		return ViewAdmin
	}
	return ViewCitizen
}

// Reporter identifies who filed a request
type Reporter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// TimelineEvent is one entry of a request's audit trail
type TimelineEvent struct {
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        EventKind `json:"kind"`
	At          time.Time `json:"at"`
}

// Request represents a reported lighting defect
type Request struct {
	ID            int64           `json:"id"`
	Protocol      string          `json:"protocol"`
	Type          string          `json:"type"`
	Address       string          `json:"address"`
	Status        Status          `json:"status"`
	Priority      Priority        `json:"priority"`
	Coordinates   Coordinates     `json:"coordinates"`
	CreatedDate   string          `json:"createdDate"`
	Reporter      Reporter        `json:"reporter"`
	Description   string          `json:"description"`
	Timeline      []TimelineEvent `json:"timeline"`
	AssignedTeam  *string         `json:"assignedTeam,omitempty"`
	EstimatedTime *string         `json:"estimatedTime,omitempty"`
}

// LastEvent returns the most recent timeline event
func (r *Request) LastEvent() (TimelineEvent, bool) {
	if len(r.Timeline) == 0 {
		return TimelineEvent{}, false
	}
	return r.Timeline[len(r.Timeline)-1], true
}

// Clone returns a deep copy so callers cannot mutate stored state
func (r Request) Clone() Request {
	out := r
	out.Timeline = append([]TimelineEvent(nil), r.Timeline...)
	if r.AssignedTeam != nil {
		team := *r.AssignedTeam
		out.AssignedTeam = &team
	}
	if r.EstimatedTime != nil {
		eta := *r.EstimatedTime
		out.EstimatedTime = &eta
	}
	return out
}

// User represents an account
type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	CredentialSecret string `json:"credentialSecret"`
	Role             Role   `json:"role"`
}

// Anonymous is the placeholder user of a session nobody has logged into
func Anonymous() User {
	return User{Role: RoleCitizen}
}

// Notification represents a generated notice for the session
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
