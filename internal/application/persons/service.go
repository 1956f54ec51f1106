package persons

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bryanwahyu/medinsight/internal/application"
	domain "github.com/bryanwahyu/medinsight/internal/domain/persons"
)

// Service manages the people a user keeps reports for. Every call is scoped
// to userID; a foreign id looks exactly like a missing one.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

func NewService(repo domain.Repository, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Repo: repo, Clock: clock}
}

// Input is the writable part of a Person.
type Input struct {
	Name   string      `json:"name"`
	Age    *int        `json:"age,omitempty"`
	Sex    *domain.Sex `json:"sex,omitempty"`
	Height *float64    `json:"height,omitempty"`
	Weight *float64    `json:"weight,omitempty"`
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (*domain.Person, error) {
	now := s.Clock.Now()
	p := &domain.Person{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Age:       in.Age,
		Sex:       in.Sex,
		Height:    in.Height,
		Weight:    in.Weight,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*domain.Person, error) {
	p, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Age, p.Sex, p.Height, p.Weight = in.Name, in.Age, in.Sex, in.Height, in.Weight
	p.UpdatedAt = s.Clock.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.Repo.Delete(ctx, userID, id)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Person, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]*domain.Person, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ResolveContext returns the demographic context for a person the user owns.
func (s *Service) ResolveContext(ctx context.Context, userID, id string) (*domain.PersonContext, error) {
	p, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return p.Context(), nil
}
