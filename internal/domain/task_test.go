package domain

import (
	"errors"
	"testing"
)

func TestAngleTaskLifecycle(t *testing.T) {
	task := NewAngleTask(AngleCloseup)
	if task.Status != TaskPending {
		t.Fatalf("Status = %q, want pending", task.Status)
	}

	task, err := task.Start()
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if task, err = task.RecordFailure("timeout"); err != nil {
			t.Fatalf("RecordFailure error: %v", err)
		}
	}
	task, err = task.Complete("http://cdn/closeup.png")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if task.Status != TaskCompleted {
		t.Fatalf("Status = %q, want completed", task.Status)
	}
	if task.RetryCount != 2 {
		t.Fatalf("RetryCount = %d, want 2", task.RetryCount)
	}
	if task.ErrorMessage != "" {
		t.Fatalf("ErrorMessage = %q, want empty", task.ErrorMessage)
	}
}

func TestAngleTaskSettledIsTerminal(t *testing.T) {
	task, _ := NewAngleTask(AngleWide).Start()
	task, _ = task.Fail("boom")

	if _, err := task.Complete("x"); !errors.Is(err, ErrTaskSettled) {
		t.Fatalf("Complete after Fail error = %v, want ErrTaskSettled", err)
	}
	if _, err := task.Start(); !errors.Is(err, ErrTaskSettled) {
		t.Fatalf("Start after Fail error = %v, want ErrTaskSettled", err)
	}
	if task.ErrorMessage != "boom" {
		t.Fatalf("ErrorMessage = %q", task.ErrorMessage)
	}
}

func TestAngleTaskRequiresStart(t *testing.T) {
	if _, err := NewAngleTask(AngleDetail).Complete("x"); !errors.Is(err, ErrTaskNotStarted) {
		t.Fatalf("error = %v, want ErrTaskNotStarted", err)
	}
}

func TestParseAngleAliases(t *testing.T) {
	cases := map[string]Angle{
		"wide":     AngleWide,
		" Medium ": AngleMedium,
		"close-up": AngleCloseup,
		"flatlay":  AngleTopdown,
		"DETAIL":   AngleDetail,
	}
	for in, want := range cases {
		got, err := ParseAngle(in)
		if err != nil {
			t.Fatalf("ParseAngle(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAngle(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseAngle("fisheye"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("ParseAngle(fisheye) error = %v", err)
	}
}

func TestStatusFromTasks(t *testing.T) {
	done := AngleTask{Status: TaskCompleted}
	failed := AngleTask{Status: TaskFailed}

	if got := StatusFromTasks([]AngleTask{done, done}); got != SessionSucceeded {
		t.Fatalf("all completed = %q", got)
	}
	if got := StatusFromTasks([]AngleTask{done, failed}); got != SessionPartial {
		t.Fatalf("mixed = %q", got)
	}
	if got := StatusFromTasks([]AngleTask{failed, failed}); got != SessionFailed {
		t.Fatalf("all failed = %q", got)
	}
}

func TestGenerationRequestValidateCustomScene(t *testing.T) {
	req := GenerationRequest{
		SourceKey:      "uploads/a.png",
		Angles:         []Angle{AngleWide},
		Size:           OutputSize{AspectRatio: "1:1", Width: 1024, Height: 1024},
		BackgroundType: BackgroundCustom,
	}
	if err := req.Validate(); !errors.Is(err, ErrMissingCustomScene) {
		t.Fatalf("Validate error = %v, want ErrMissingCustomScene", err)
	}
	req.CustomBackground = "beach at sunset"
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate error = %v", err)
	}
}
