package chat

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursehub/core"
)

type Chat struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	CourseID       string     `json:"course_id,omitempty"`
	ParticipantIDs []string   `json:"participant_ids"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	LastMessageAt  *time.Time `json:"last_message_at"`
}

func (ch Chat) HasParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range ch.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID       string    `json:"id"`
	ChatID   string    `json:"chat_id"`
	SenderID string    `json:"sender_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"` // UTC
}

type NewChat struct {
	Title          string   `json:"title" validate:"required,notblank,max=200"`
	CourseID       string   `json:"course_id"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,required"`
}

// Validate cleans the chat & adds creatorID to its participants.
func (nc *NewChat) Validate(creatorID string, validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.CourseID = core.CleanString(nc.CourseID)

	seen := make(map[string]struct{}, len(nc.ParticipantIDs)+1)
	ids := make([]string, 0, len(nc.ParticipantIDs)+1)
	for _, id := range append([]string{creatorID}, nc.ParticipantIDs...) {
		id = core.CleanString(id)
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > 1 {
		nc.ParticipantIDs = ids
	} else {
		nc.ParticipantIDs = nil // nobody to talk to
	}
	return validate.Struct(nc)
}

type NewMessage struct {
	Body string `json:"body" validate:"required,notblank,max=5000"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Body = core.CleanString(nm.Body)
	return validate.Struct(nm)
}

type QueryFilter struct {
	ParticipantID string // empty means every chat
	CourseID      string
}
