package pipeline

import (
	"context"
	"errors"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(nil))
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}

		expected := []string{"first", "second", "third"}
		for i, name := range p.StepNames() {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})

	t.Run("returns empty names for empty pipeline", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected empty slice, got %v", names)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)
		record := func(name string) func(context.Context, *Job) error {
			return func(_ context.Context, _ *Job) error {
				executionOrder = append(executionOrder, name)
				return nil
			}
		}

		p := New()
		p.AddSteps(
			&mockStep{name: "step-1", doFunc: record("step-1")},
			&mockStep{name: "step-2", doFunc: record("step-2")},
		)

		job := &Job{Subject: "Acme"}
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 || executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
		if len(job.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %v", job.PerformedSteps)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddSteps(
			&mockStep{
				name: "failing-step",
				doFunc: func(_ context.Context, _ *Job) error {
					return expectedErr
				},
			},
			second,
		)

		job := &Job{}
		err := p.Execute(context.Background(), job)
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if len(job.PerformedSteps) != 0 {
			t.Errorf("failed step should not be recorded, got %v", job.PerformedSteps)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		job := &Job{}
		err := p.Execute(ctx, job)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !job.Cancelled {
			t.Error("job.Cancelled should be true")
		}
	})

	t.Run("steps see earlier results", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{
				name: "set-subject",
				doFunc: func(_ context.Context, job *Job) error {
					job.Subject = "Acme"
					return nil
				},
			},
			&mockStep{
				name: "check-subject",
				doFunc: func(_ context.Context, job *Job) error {
					if job.Subject != "Acme" {
						return errors.New("subject not set")
					}
					return nil
				},
			},
		)

		if err := p.Execute(context.Background(), &Job{}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
