package chat

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/coursehub/core"
)

var (
	// errors
	ErrNotFound       = errors.New("chat not found")
	ErrNotParticipant = errors.New("only participants can post in this chat")
)

type (
	Repository interface {
		CreateChat(ctx context.Context, ch Chat) (Chat, error)
		// QueryChats returns chats ordered by most recent activity first.
		QueryChats(ctx context.Context, filter *QueryFilter) ([]Chat, error)
		GetChatByID(ctx context.Context, id string) (Chat, error)
		// CreateMessage stores msg & sets the LastMessageAt of its chat.
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryMessages returns the messages of a chat, oldest first.
		QueryMessages(ctx context.Context, chatID string) ([]Message, error)
	}

	// UserChecker tells whether user ids exist.
	UserChecker interface {
		Exists(ctx context.Context, id string) (bool, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, creatorID string, nc NewChat) (Chat, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Chat, error)
		GetByID(ctx context.Context, id string) (Chat, error)
		Messages(ctx context.Context, chatID string) ([]Message, error)
		Post(ctx context.Context, ch Chat, senderID string, nm NewMessage) (Message, error)
	}

	Service struct {
		repo  Repository
		users UserChecker
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

func (svc *Service) Create(ctx context.Context, creatorID string, nc NewChat) (Chat, error) {
	for _, id := range nc.ParticipantIDs {
		ok, err := svc.users.Exists(ctx, id)
		if err != nil {
			return Chat{}, err
		}
		if !ok {
			return Chat{}, core.NewValidationError(nil, core.FieldError{
				Field: "participant_ids",
				Error: "unknown participant: " + id,
			})
		}
	}
	return svc.repo.CreateChat(ctx, Chat{
		Title:          nc.Title,
		CourseID:       nc.CourseID,
		ParticipantIDs: nc.ParticipantIDs,
		CreatedBy:      creatorID,
		CreatedAt:      time.Now().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Chat, error) {
	return svc.repo.QueryChats(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Chat, error) {
	return svc.repo.GetChatByID(ctx, id)
}

func (svc *Service) Messages(ctx context.Context, chatID string) ([]Message, error) {
	return svc.repo.QueryMessages(ctx, chatID)
}

// Post adds a message to ch. Admins may read every chat but only participants can post.
func (svc *Service) Post(ctx context.Context, ch Chat, senderID string, nm NewMessage) (Message, error) {
	if !ch.HasParticipant(senderID) {
		return Message{}, ErrNotParticipant
	}
	return svc.repo.CreateMessage(ctx, Message{
		ChatID:   ch.ID,
		SenderID: senderID,
		Body:     nm.Body,
		SentAt:   time.Now().UTC(),
	})
}
