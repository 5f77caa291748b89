package expert

import (
	"context"
	"time"
)

// Service applies plan and week edits to stored experts. Every operation
// reads the whole expert, mutates it in memory and writes it back, so
// concurrent edits to the same expert are last-write-wins.
type Service struct {
	repo *Repository
}

// NewService creates an expert service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Repository returns the underlying repository.
func (s *Service) Repository() *Repository {
	return s.repo
}

func (s *Service) mutate(ctx context.Context, id string, fn func(e *Expert) error) (*Expert, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AddMonth appends an empty plan to the expert.
func (s *Service) AddMonth(ctx context.Context, id, month string, year int) (*Expert, error) {
	return s.mutate(ctx, id, func(e *Expert) error {
		_, err := e.AddMonth(month, year)
		return err
	})
}

// SetCurrentMonth makes plan i the expert's only current plan.
func (s *Service) SetCurrentMonth(ctx context.Context, id string, i int) (*Expert, error) {
	return s.mutate(ctx, id, func(e *Expert) error {
		return e.SetCurrent(i)
	})
}

// SaveWeek adds a week to a plan, or replaces one when weekIdx is non-nil.
func (s *Service) SaveWeek(ctx context.Context, id string, planIdx int, weekIdx *int, in WeekInput) (*Expert, error) {
	return s.mutate(ctx, id, func(e *Expert) error {
		_, err := e.SaveWeek(planIdx, weekIdx, in)
		return err
	})
}

// DeleteWeek removes a week from a plan.
func (s *Service) DeleteWeek(ctx context.Context, id string, planIdx, weekIdx int) (*Expert, error) {
	return s.mutate(ctx, id, func(e *Expert) error {
		return e.DeleteWeek(planIdx, weekIdx)
	})
}

// ActiveWeek returns the expert's active week on day. Plan and Week are nil
// when the expert has no plans; Week alone is nil when no week covers day.
func (s *Service) ActiveWeek(ctx context.Context, id string, day time.Time) (ActiveWeek, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ActiveWeek{}, err
	}
	aw, _ := e.ActiveWeek(day)
	return aw, nil
}
