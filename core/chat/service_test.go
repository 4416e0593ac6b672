package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/user"
	inmemdb "github.com/trezcool/coursehub/storage/database/inmem"
	"github.com/trezcool/coursehub/storage/fixtures"
)

func newService(t *testing.T) *chat.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	fx, err := fixtures.Default()
	require.NoError(t, err)
	require.NoError(t, db.Seed(fx))
	return chat.NewService(inmemdb.NewChatRepository(db), user.NewService(inmemdb.NewUserRepository(db), nil))
}

func TestNewChat_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	nc := chat.NewChat{Title: " Pairing ", ParticipantIDs: []string{" b ", "a", "b", ""}}
	require.NoError(t, nc.Validate("a", validate))
	assert.Equal(t, "Pairing", nc.Title)
	assert.Equal(t, []string{"a", "b"}, nc.ParticipantIDs)

	nc = chat.NewChat{Title: "Notes", ParticipantIDs: []string{"a"}}
	assert.Error(t, nc.Validate("a", validate))
}

func TestService_Create(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-student-1", chat.NewChat{Title: "Hi", ParticipantIDs: []string{"user-student-1", "ghost"}})
	var valErr *core.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "participant_ids", valErr.Fields[0].Field)

	ch, err := svc.Create(ctx, "user-student-1", chat.NewChat{Title: "Hi", ParticipantIDs: []string{"user-student-1", "user-student-2"}})
	require.NoError(t, err)
	assert.Equal(t, "user-student-1", ch.CreatedBy)
	assert.True(t, ch.HasParticipant("user-student-2"))
	assert.False(t, ch.HasParticipant(""))

	chats, err := svc.Query(ctx, &chat.QueryFilter{ParticipantID: "user-student-2"})
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, ch.ID, chats[0].ID)
}

func TestService_Post(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	ch, err := svc.GetByID(ctx, "chat-dm")
	require.NoError(t, err)

	_, err = svc.Post(ctx, ch, "user-admin", chat.NewMessage{Body: "hello"})
	assert.Equal(t, chat.ErrNotParticipant, err)

	msg, err := svc.Post(ctx, ch, "user-tutor-1", chat.NewMessage{Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "chat-dm", msg.ChatID)

	msgs, err := svc.Messages(ctx, "chat-dm")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msg, msgs[0])

	ch, err = svc.GetByID(ctx, "chat-dm")
	require.NoError(t, err)
	require.NotNil(t, ch.LastMessageAt)
	assert.True(t, ch.LastMessageAt.Equal(msg.SentAt))

	_, err = svc.GetByID(ctx, "nope")
	assert.Equal(t, chat.ErrNotFound, err)
}
