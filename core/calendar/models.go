package calendar

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
)

type EventType string

const (
	TypeLecture    EventType = "lecture"
	TypeAssignment EventType = "assignment"
	TypeExam       EventType = "exam"
	TypeMeeting    EventType = "meeting"
	TypeOther      EventType = "other"
)

var AllEventTypes = []EventType{TypeLecture, TypeAssignment, TypeExam, TypeMeeting, TypeOther}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	StartsAt    time.Time `json:"starts_at"` // UTC
	EndsAt      time.Time `json:"ends_at"`   // UTC
	CourseID    string    `json:"course_id,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overlaps reports whether the event intersects the [from, to] window. Zero bounds are open.
func (e Event) Overlaps(from, to time.Time) bool {
	if !from.IsZero() && e.EndsAt.Before(from) {
		return false
	}
	if !to.IsZero() && e.StartsAt.After(to) {
		return false
	}
	return true
}

type NewEvent struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Type        EventType `json:"type" validate:"required,eventtype"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at"` // defaults to StartsAt
	CourseID    string    `json:"course_id"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.CourseID = core.CleanString(ne.CourseID)
	if ne.EndsAt.IsZero() {
		ne.EndsAt = ne.StartsAt
	}
	return validate.Struct(ne)
}

// UpdateEvent: nil fields are left untouched.
type UpdateEvent struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Type        *EventType `json:"type" validate:"omitempty,eventtype"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`

	// the resulting window, checked by the struct validator
	starts, ends time.Time
}

func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate) error {
	if ue.Title != nil {
		title := core.CleanString(*ue.Title)
		ue.Title = &title
	}
	ue.starts, ue.ends = orig.StartsAt, orig.EndsAt
	if ue.StartsAt != nil {
		ue.starts = *ue.StartsAt
	}
	if ue.EndsAt != nil {
		ue.ends = *ue.EndsAt
	}
	return validate.Struct(ue)
}

// Audience restricts events to those owned by UserID or attached to one of CourseIDs.
type Audience struct {
	UserID    string
	CourseIDs []string
}

func (a Audience) Includes(evt Event) bool {
	if evt.OwnerID == a.UserID {
		return true
	}
	if evt.CourseID == "" {
		return false
	}
	for _, id := range a.CourseIDs {
		if id == evt.CourseID {
			return true
		}
	}
	return false
}

type QueryFilter struct {
	Audience *Audience // nil means every event
	CourseID string
	Types    []EventType
	From     time.Time
	To       time.Time
}
