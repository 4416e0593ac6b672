package inmemdb

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
)

var eventComparators = map[string]core.Comparator[calendar.Event]{
	"title":      func(a, b calendar.Event) int { return core.CompareStrings(a.Title, b.Title) },
	"type":       func(a, b calendar.Event) int { return core.CompareStrings(string(a.Type), string(b.Type)) },
	"starts_at":  func(a, b calendar.Event) int { return core.CompareTimes(a.StartsAt, b.StartsAt) },
	"ends_at":    func(a, b calendar.Event) int { return core.CompareTimes(a.EndsAt, b.EndsAt) },
	"created_at": func(a, b calendar.Event) int { return core.CompareTimes(a.CreatedAt, b.CreatedAt) },
}

type eventRepository struct {
	db *table[calendar.Event]
}

var _ calendar.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) calendar.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	evt.ID = uuid.New().String()
	repo.db.insert(evt.ID, evt)
	return evt, nil
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *calendar.QueryFilter, ordering []core.Ordering) ([]calendar.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = new(calendar.QueryFilter)
	}
	evts := repo.db.all(func(evt calendar.Event) bool {
		if filter.Audience != nil && !filter.Audience.Includes(evt) {
			return false
		}
		if filter.CourseID != "" && evt.CourseID != filter.CourseID {
			return false
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, evt.Type) {
			return false
		}
		return evt.Overlaps(filter.From, filter.To)
	})
	core.SortBy(evts, ordering, eventComparators)
	return evts, nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (calendar.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if evt, ok := repo.db.get(id); ok {
		return evt, nil
	}
	return calendar.Event{}, calendar.ErrNotFound
}

func (repo *eventRepository) UpdateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.update(evt.ID, evt) {
		return calendar.Event{}, calendar.ErrNotFound
	}
	return evt, nil
}

func (repo *eventRepository) DeleteEvent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if !repo.db.delete(id) {
		return calendar.ErrNotFound
	}
	return nil
}
