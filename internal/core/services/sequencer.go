package services

import (
	"context"
	"sync"

	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
)

// SaveFunc persists the data of the current step
type SaveFunc func(ctx context.Context) (origination.Envelope, error)

// StepSequencer drives the eight-step wizard of one session.
// Forward moves wait for the step's save to succeed.
type StepSequencer struct {
	mu        sync.Mutex
	current   domain.Step
	pending   bool
	submitted bool
}

func NewStepSequencer() *StepSequencer {
	return &StepSequencer{current: domain.FirstStep}
}

func (s *StepSequencer) Current() domain.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *StepSequencer) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Advance runs save for step from and moves forward only when the envelope is
// a success. A nil save advances unconditionally. At the last step the
// position does not change. Only one Advance may be in flight.
func (s *StepSequencer) Advance(ctx context.Context, from domain.Step, save SaveFunc) (domain.Step, origination.Envelope, error) {
	if err := s.begin(from); err != nil {
		return s.Current(), origination.Envelope{}, err
	}
	defer s.end()

	var env origination.Envelope
	if save != nil {
		var err error
		env, err = save(ctx)
		if err != nil {
			return s.Current(), env, err
		}
		if !env.IsSuccess() {
			return s.Current(), env, domain.ErrStepNotSaved
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < domain.LastStep {
		s.current++
	}
	return s.current, env, nil
}

// Finish runs the final submission and jumps straight to the last step
func (s *StepSequencer) Finish(ctx context.Context, save SaveFunc) (domain.Step, origination.Envelope, error) {
	if err := s.begin(domain.LastStep); err != nil {
		return s.Current(), origination.Envelope{}, err
	}
	defer s.end()

	env, err := save(ctx)
	if err != nil {
		return s.Current(), env, err
	}
	if !env.IsSuccess() {
		return s.Current(), env, domain.ErrStepNotSaved
	}
	return s.Complete(), env, nil
}

// Complete marks the application submitted and jumps to the last step
func (s *StepSequencer) Complete() domain.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = domain.LastStep
	s.submitted = true
	return s.current
}

// Back moves one step backward. From the first step it reports exited,
// meaning the customer returns to the dashboard. A submitted wizard stays put.
func (s *StepSequencer) Back() (step domain.Step, exited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return s.current, false
	}
	if s.current <= domain.FirstStep {
		return domain.FirstStep, true
	}
	s.current--
	return s.current, false
}

// Restore positions the wizard after a reload
func (s *StepSequencer) Restore(step domain.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step.Valid() {
		s.current = step
	}
}

func (s *StepSequencer) begin(from domain.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return domain.ErrStepPending
	}
	if s.current != from || s.submitted {
		return domain.ErrWrongStep
	}
	s.pending = true
	return nil
}

func (s *StepSequencer) end() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
}
