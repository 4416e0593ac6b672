package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/coursehub/core"
)

var ErrNotFound = errors.New("event not found")

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		// QueryEvents applies AND operation on available QueryFilter fields.
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ownerID string, ne NewEvent) (Event, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Event, error)
		GetByID(ctx context.Context, id string) (Event, error)
		Update(ctx context.Context, id string, ue UpdateEvent) (Event, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ownerID string, ne NewEvent) (Event, error) {
	now := time.Now().UTC()
	return svc.repo.CreateEvent(ctx, Event{
		Title:       ne.Title,
		Description: ne.Description,
		Type:        ne.Type,
		StartsAt:    ne.StartsAt.UTC(),
		EndsAt:      ne.EndsAt.UTC(),
		CourseID:    ne.CourseID,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]Event, error) {
	if len(ordering) == 0 {
		ordering = []core.Ordering{{Field: "starts_at", Ascending: true}}
	}
	return svc.repo.QueryEvents(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if ue.Title != nil {
		evt.Title = *ue.Title
	}
	if ue.Description != nil {
		evt.Description = *ue.Description
	}
	if ue.Type != nil {
		evt.Type = *ue.Type
	}
	if ue.StartsAt != nil {
		evt.StartsAt = ue.StartsAt.UTC()
	}
	if ue.EndsAt != nil {
		evt.EndsAt = ue.EndsAt.UTC()
	}
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}
