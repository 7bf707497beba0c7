package domain

import "fmt"

// TaskStatus enumerates the lifecycle of an AngleTask.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Settled reports whether the status is terminal.
func (s TaskStatus) Settled() bool {
	return s == TaskCompleted || s == TaskFailed
}

// AngleTask is the unit of work for one requested angle. Transitions return a
// new value: pending -> processing -> completed|failed. RetryCount counts the
// failed attempts recorded before the task settled.
type AngleTask struct {
	Angle        Angle      `json:"angle"`
	Status       TaskStatus `json:"status"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	RetryCount   int        `json:"retryCount"`
}

// NewAngleTask returns a pending task for angle.
func NewAngleTask(angle Angle) AngleTask {
	return AngleTask{Angle: angle, Status: TaskPending}
}

// Start moves a pending task to processing.
func (t AngleTask) Start() (AngleTask, error) {
	if t.Status != TaskPending {
		return t, fmt.Errorf("%w: %s is %s", ErrTaskSettled, t.Angle, t.Status)
	}
	t.Status = TaskProcessing
	return t, nil
}

// RecordFailure notes a failed attempt without settling the task.
func (t AngleTask) RecordFailure(msg string) (AngleTask, error) {
	if t.Status != TaskProcessing {
		return t, t.notProcessing()
	}
	t.RetryCount++
	t.ErrorMessage = msg
	return t, nil
}

// Complete settles the task successfully and clears any earlier error.
func (t AngleTask) Complete(imageURL string) (AngleTask, error) {
	if t.Status != TaskProcessing {
		return t, t.notProcessing()
	}
	t.Status = TaskCompleted
	t.ImageURL = imageURL
	t.ErrorMessage = ""
	return t, nil
}

// Fail settles the task as failed with the last error message.
func (t AngleTask) Fail(msg string) (AngleTask, error) {
	if t.Status != TaskProcessing {
		return t, t.notProcessing()
	}
	t.Status = TaskFailed
	t.ImageURL = ""
	if msg != "" {
		t.ErrorMessage = msg
	}
	return t, nil
}

func (t AngleTask) notProcessing() error {
	if t.Status.Settled() {
		return fmt.Errorf("%w: %s is %s", ErrTaskSettled, t.Angle, t.Status)
	}
	return fmt.Errorf("%w: %s", ErrTaskNotStarted, t.Angle)
}
