package inmemdb

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core/chat"
)

// chatRepository locks the chat table before the message table.
type chatRepository struct {
	db      *table[chat.Chat]
	message *table[chat.Message]
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{db: db.chat, message: db.message}
}

func cloneChat(ch chat.Chat) chat.Chat {
	ch.ParticipantIDs = slices.Clone(ch.ParticipantIDs)
	return ch
}

func lastActivity(ch chat.Chat) time.Time {
	if ch.LastMessageAt != nil {
		return *ch.LastMessageAt
	}
	return ch.CreatedAt
}

func (repo *chatRepository) CreateChat(_ context.Context, ch chat.Chat) (chat.Chat, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ch.ID = uuid.New().String()
	ch = cloneChat(ch)
	repo.db.insert(ch.ID, ch)
	return cloneChat(ch), nil
}

func (repo *chatRepository) QueryChats(_ context.Context, filter *chat.QueryFilter) ([]chat.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = new(chat.QueryFilter)
	}
	chats := repo.db.all(func(ch chat.Chat) bool {
		if filter.ParticipantID != "" && !ch.HasParticipant(filter.ParticipantID) {
			return false
		}
		if filter.CourseID != "" && ch.CourseID != filter.CourseID {
			return false
		}
		return true
	})
	for i := range chats {
		chats[i] = cloneChat(chats[i])
	}
	sort.SliceStable(chats, func(i, j int) bool { return lastActivity(chats[i]).After(lastActivity(chats[j])) })
	return chats, nil
}

func (repo *chatRepository) GetChatByID(_ context.Context, id string) (chat.Chat, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ch, ok := repo.db.get(id); ok {
		return cloneChat(ch), nil
	}
	return chat.Chat{}, chat.ErrNotFound
}

func (repo *chatRepository) CreateMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ch, ok := repo.db.get(msg.ChatID)
	if !ok {
		return chat.Message{}, chat.ErrNotFound
	}

	repo.message.Lock()
	defer repo.message.Unlock()

	msg.ID = uuid.New().String()
	repo.message.insert(msg.ID, msg)

	sentAt := msg.SentAt
	ch.LastMessageAt = &sentAt
	repo.db.update(ch.ID, ch)
	return msg, nil
}

func (repo *chatRepository) QueryMessages(_ context.Context, chatID string) ([]chat.Message, error) {
	repo.message.RLock()
	defer repo.message.RUnlock()

	msgs := repo.message.all(func(msg chat.Message) bool { return msg.ChatID == chatID })
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].SentAt.Before(msgs[j].SentAt) })
	return msgs, nil
}
