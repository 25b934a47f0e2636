package usecase

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/domain/models"
)

func (f *fixture) join(t *testing.T, connID uuid.UUID, roomID, name string) {
	t.Helper()
	require.NoError(t, f.session.HandleJoin(connID, events.JoinRoomEvent{
		RoomID:  roomID,
		Profile: models.Profile{Name: name},
	}))
}

func TestChatUsecase_SendBroadcastsToWholeRoom(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	bob := uuid.New()
	f.join(t, alice, "demo", "Alice")
	f.join(t, bob, "demo", "Bob")

	req.NoError(f.chat.HandleSendMessage(alice, events.SendMessageEvent{
		RoomID:  "demo",
		Message: events.MessageInput{Body: "hello room"},
		User:    models.Profile{Name: "Alice"},
	}))

	// Both members, sender included, receive the stored message.
	for _, connID := range []uuid.UUID{alice, bob} {
		msg := decodeData[models.ChatMessage](t, f.connRepo.lastOfType(t, connID, events.TypeNewMessage))
		req.Equal("hello room", msg.Body)
		req.Equal(alice, msg.Sender.ConnID)
		req.Equal("Alice", msg.Sender.Name)
		req.Equal(models.MessageTypeText, msg.Type)
	}

	req.Equal(1, f.chatStore.Stats("demo").Total)
}

func TestChatUsecase_SendValidation(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	f.join(t, alice, "demo", "Alice")

	// Whitespace-only body is rejected without being stored.
	req.NoError(f.chat.HandleSendMessage(alice, events.SendMessageEvent{
		RoomID:  "demo",
		Message: events.MessageInput{Body: "   \n\t "},
	}))
	errEvent := decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, alice, events.TypeError))
	req.Equal(models.ErrEmptyMessage.Error(), errEvent.Message)

	// Oversized body likewise.
	req.NoError(f.chat.HandleSendMessage(alice, events.SendMessageEvent{
		RoomID:  "demo",
		Message: events.MessageInput{Body: strings.Repeat("x", 4001)},
	}))
	errEvent = decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, alice, events.TypeError))
	req.Equal(models.ErrMessageTooLong.Error(), errEvent.Message)

	req.Zero(f.chatStore.Stats("demo").Total)
	req.Zero(f.connRepo.countOfType(alice, events.TypeNewMessage))
}

func TestChatUsecase_SendRejectedWhenChatDisabled(t *testing.T) {
	req := require.New(t)

	settings := testSettings()
	settings.ChatEnabled = false
	f := newFixture(settings)

	alice := uuid.New()
	f.join(t, alice, "demo", "Alice")

	req.NoError(f.chat.HandleSendMessage(alice, events.SendMessageEvent{
		RoomID:  "demo",
		Message: events.MessageInput{Body: "hi"},
	}))

	errEvent := decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, alice, events.TypeError))
	req.Equal(models.ErrChatDisabled.Error(), errEvent.Message)
	req.Zero(f.chatStore.Stats("demo").Total)
}

func TestChatUsecase_EditBroadcast(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	bob := uuid.New()
	f.join(t, alice, "demo", "Alice")
	f.join(t, bob, "demo", "Bob")

	stored := f.chatStore.Send("demo", "", "draft", models.Sender{ConnID: alice, Name: "Alice"}, nil)

	req.NoError(f.chat.HandleEditMessage(alice, events.EditMessageEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Body:      "final",
	}))

	edited := decodeData[models.ChatMessage](t, f.connRepo.lastOfType(t, bob, events.TypeMessageEdited))
	req.Equal(stored.ID, edited.ID)
	req.Equal("final", edited.Body)
	req.NotNil(edited.EditedAt)
}

func TestChatUsecase_EditByNonSenderRejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	bob := uuid.New()
	f.join(t, alice, "demo", "Alice")
	f.join(t, bob, "demo", "Bob")

	stored := f.chatStore.Send("demo", "", "mine", models.Sender{ConnID: alice, Name: "Alice"}, nil)

	req.NoError(f.chat.HandleEditMessage(bob, events.EditMessageEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Body:      "hijacked",
	}))

	errEvent := decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, bob, events.TypeError))
	req.Equal(models.ErrMessageNotFound.Error(), errEvent.Message)
	req.Zero(f.connRepo.countOfType(alice, events.TypeMessageEdited))
}

func TestChatUsecase_DeleteBroadcast(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	bob := uuid.New()
	f.join(t, alice, "demo", "Alice")
	f.join(t, bob, "demo", "Bob")

	stored := f.chatStore.Send("demo", "", "oops", models.Sender{ConnID: alice, Name: "Alice"}, nil)

	req.NoError(f.chat.HandleDeleteMessage(alice, events.DeleteMessageEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
	}))

	deleted := decodeData[events.MessageDeletedEvent](t, f.connRepo.lastOfType(t, bob, events.TypeMessageDeleted))
	req.Equal(stored.ID, deleted.MessageID)
	req.Zero(f.chatStore.Stats("demo").Total)
}

func TestChatUsecase_ReactionRoundTrip(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	bob := uuid.New()
	f.join(t, alice, "demo", "Alice")
	f.join(t, bob, "demo", "Bob")

	stored := f.chatStore.Send("demo", "", "react to me", models.Sender{ConnID: alice, Name: "Alice"}, nil)

	req.NoError(f.chat.HandleReaction(bob, events.ReactionEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Emoji:     "👍",
	}, true))

	added := decodeData[events.ReactionUpdateEvent](t, f.connRepo.lastOfType(t, alice, events.TypeReactionAdded))
	req.Equal(stored.ID, added.MessageID)
	req.Equal("👍", added.Emoji)
	req.Equal(bob, added.UserID)
	req.Equal([]uuid.UUID{bob}, added.Reactions["👍"])

	req.NoError(f.chat.HandleReaction(bob, events.ReactionEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Emoji:     "👍",
	}, false))

	removed := decodeData[events.ReactionUpdateEvent](t, f.connRepo.lastOfType(t, alice, events.TypeReactionRemoved))
	req.Empty(removed.Reactions)
}

func TestChatUsecase_ReactionOnUnknownMessage(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	f.join(t, alice, "demo", "Alice")

	req.NoError(f.chat.HandleReaction(alice, events.ReactionEvent{
		RoomID:    "demo",
		MessageID: uuid.New(),
		Emoji:     "🎉",
	}, true))

	errEvent := decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, alice, events.TypeError))
	req.Equal(models.ErrMessageNotFound.Error(), errEvent.Message)
}

func TestChatUsecase_TypingExcludesRecipientSelf(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()
	f.join(t, alice, "demo", "Alice")
	f.join(t, bob, "demo", "Bob")
	f.join(t, carol, "demo", "Carol")

	req.NoError(f.chat.HandleTyping(alice, events.TypingEvent{RoomID: "demo", IsTyping: true}))
	req.NoError(f.chat.HandleTyping(bob, events.TypingEvent{RoomID: "demo", IsTyping: true}))

	// Carol, not typing, sees both typers.
	carolView := decodeData[events.TypingUpdateEvent](t, f.connRepo.lastOfType(t, carol, events.TypeTypingUpdate))
	req.ElementsMatch([]uuid.UUID{alice, bob}, carolView.TypingUsers)

	// Alice is typing herself but her view only contains Bob.
	aliceView := decodeData[events.TypingUpdateEvent](t, f.connRepo.lastOfType(t, alice, events.TypeTypingUpdate))
	req.Equal([]uuid.UUID{bob}, aliceView.TypingUsers)

	// Bob stops: everyone else is told Alice alone remains.
	req.NoError(f.chat.HandleTyping(bob, events.TypingEvent{RoomID: "demo", IsTyping: false}))

	carolView = decodeData[events.TypingUpdateEvent](t, f.connRepo.lastOfType(t, carol, events.TypeTypingUpdate))
	req.Equal([]uuid.UUID{alice}, carolView.TypingUsers)
}

func TestChatUsecase_TypingActorGetsNoEcho(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	f.join(t, alice, "demo", "Alice")

	req.NoError(f.chat.HandleTyping(alice, events.TypingEvent{RoomID: "demo", IsTyping: true}))

	req.Zero(f.connRepo.countOfType(alice, events.TypeTypingUpdate))
}

func TestChatUsecase_EditValidatedLikeSend(t *testing.T) {
	req := require.New(t)
	f := newFixture(testSettings())

	alice := uuid.New()
	f.join(t, alice, "demo", "Alice")

	stored := f.chatStore.Send("demo", "", "original", models.Sender{ConnID: alice, Name: "Alice"}, nil)

	// An edit cannot grow the message past the configured cap.
	req.NoError(f.chat.HandleEditMessage(alice, events.EditMessageEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Body:      strings.Repeat("x", 4001),
	}))
	errEvent := decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, alice, events.TypeError))
	req.Equal(models.ErrMessageTooLong.Error(), errEvent.Message)

	// Nor blank it out.
	req.NoError(f.chat.HandleEditMessage(alice, events.EditMessageEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Body:      "   \n ",
	}))
	errEvent = decodeData[events.ErrorEvent](t, f.connRepo.lastOfType(t, alice, events.TypeError))
	req.Equal(models.ErrEmptyMessage.Error(), errEvent.Message)

	history := f.chatStore.History("demo", 10, 0)
	req.Len(history, 1)
	req.Equal("original", history[0].Body)
	req.Nil(history[0].EditedAt)
	req.Zero(f.connRepo.countOfType(alice, events.TypeMessageEdited))

	// A surrounding-whitespace edit is trimmed like a fresh message.
	req.NoError(f.chat.HandleEditMessage(alice, events.EditMessageEvent{
		RoomID:    "demo",
		MessageID: stored.ID,
		Body:      "  revised  ",
	}))
	edited := decodeData[models.ChatMessage](t, f.connRepo.lastOfType(t, alice, events.TypeMessageEdited))
	req.Equal("revised", edited.Body)
}
