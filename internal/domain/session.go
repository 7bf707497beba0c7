package domain

import "time"

// SessionStatus enumerates persisted session lifecycle states.
type SessionStatus string

const (
	SessionQueued    SessionStatus = "QUEUED"
	SessionRunning   SessionStatus = "RUNNING"
	SessionSucceeded SessionStatus = "SUCCEEDED"
	SessionPartial   SessionStatus = "PARTIAL"
	SessionFailed    SessionStatus = "FAILED"
)

// GenerationSession aggregates everything computed for one request. Attributes,
// Intent, Blueprint and Anchor are fixed before the first render.
type GenerationSession struct {
	ID         string            `json:"id"`
	Attributes ProductAttributes `json:"attributes"`
	Intent     IntentSignals     `json:"intent"`
	Blueprint  SceneBlueprint    `json:"blueprint"`
	Anchor     IdentityAnchor    `json:"identityAnchor"`
	Tasks      []AngleTask       `json:"tasks"`
	Original   ImageRef          `json:"originalImage"`
	Canonical  *ImageRef         `json:"canonicalAnchorImage,omitempty"`
	Previous   *ImageRef         `json:"previousAngleImage,omitempty"`
}

// Status summarizes the settled tasks.
func (s GenerationSession) Status() SessionStatus {
	return StatusFromTasks(s.Tasks)
}

// StatusFromTasks maps task outcomes to a session status.
func StatusFromTasks(tasks []AngleTask) SessionStatus {
	if len(tasks) == 0 {
		return SessionFailed
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == TaskCompleted {
			completed++
		}
	}
	switch completed {
	case 0:
		return SessionFailed
	case len(tasks):
		return SessionSucceeded
	default:
		return SessionPartial
	}
}

// SessionRecord is the persisted view of a queued or finished session.
type SessionRecord struct {
	ID           string
	UserID       string
	Status       SessionStatus
	RequestJSON  []byte
	ErrorMessage string
	Results      []AngleTask
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
