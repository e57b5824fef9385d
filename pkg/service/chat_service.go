package service

import (
	"context"
	"strings"
	"sync"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/gateway"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/store"
	"github.com/openpaw/pawdeck/pkg/views"
)

const (
	msgCreateConversation = "Failed to create conversation"
	msgLoadConversation   = "Failed to load conversation"
	msgDeleteConversation = "Failed to delete conversation"
)

// ChatService drives the chat view: the conversation list, the active
// conversation and the message composer.
type ChatService struct {
	viewBase
	gw    ChatGateway
	store *store.Store
	loads *Sequencer

	mu       sync.Mutex
	input    string
	inflight int
}

func NewChatService(gw ChatGateway, st *store.Store, opts Options) *ChatService {
	s := &ChatService{gw: gw, store: st, loads: NewSequencer()}
	s.init("chat", opts)
	return s
}

// Activate loads the conversation list and opens the first conversation. An
// empty list or a failed load starts a fresh conversation instead.
func (s *ChatService) Activate(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	convs, err := s.gw.ListConversations(ctx)
	if err != nil {
		s.logger.Warn("list conversations failed", "error", err)
		_, err := s.NewConversation(ctx)
		return err
	}
	s.store.Conversations.Replace(convs)
	s.emit(event.ConversationsChangedEvent{})
	if len(convs) == 0 {
		_, err := s.NewConversation(ctx)
		return err
	}
	return s.SwitchConversation(ctx, convs[0].ID)
}

// NewConversation creates a conversation remotely and makes it active. The
// local list only changes once the backend confirmed the create.
func (s *ChatService) NewConversation(ctx context.Context) (models.Conversation, error) {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	conv, err := s.gw.CreateConversation(ctx)
	if err != nil {
		s.fail("new_conversation", fixedMessage(err, msgCreateConversation), err)
		return models.Conversation{}, err
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}

	s.store.Conversations.Prepend(conv)
	s.store.SetActiveConversation(conv.ID)
	s.mu.Lock()
	s.input = ""
	s.mu.Unlock()
	s.clearError()
	s.succeed("new_conversation")

	s.emit(event.ConversationsChangedEvent{})
	s.emit(event.ActiveConversationChangedEvent{ConversationID: conv.ID})
	return conv, nil
}

// SwitchConversation selects id right away, then fetches its history. The
// fetched history is applied to id even if the user moved on meanwhile, and
// dropped when id was deleted before it arrived.
func (s *ChatService) SwitchConversation(ctx context.Context, id string) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	s.store.SetActiveConversation(id)
	s.emit(event.ActiveConversationChangedEvent{ConversationID: id})

	n := s.loads.Next(id)
	conv, err := s.gw.GetConversation(ctx, id)
	if err != nil {
		s.fail("switch_conversation", fixedMessage(err, msgLoadConversation), err)
		return err
	}
	if !s.loads.IsLatest(id, n) {
		s.stale("switch_conversation")
		return nil
	}
	if conv.ID == "" {
		conv.ID = id
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	if _, ok := s.store.Conversations.Update(id, func(models.Conversation) models.Conversation { return conv }); !ok {
		// Deleted while the history was in flight.
		s.stale("switch_conversation")
		return nil
	}
	s.succeed("switch_conversation")
	s.emit(event.MessagesReplacedEvent{ConversationID: id, Count: len(conv.Messages)})
	return nil
}

// DeleteConversation removes id once the backend confirmed it. When the
// active conversation goes away the first remaining one is opened, or a new
// one is created.
func (s *ChatService) DeleteConversation(ctx context.Context, id string) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	if err := s.gw.DeleteConversation(ctx, id); err != nil {
		s.fail("delete_conversation", fixedMessage(err, msgDeleteConversation), err)
		return err
	}
	s.store.Conversations.Remove(id)
	s.succeed("delete_conversation")
	s.emit(event.ConversationsChangedEvent{})

	if s.store.ActiveConversation() != id {
		return nil
	}
	remaining := s.store.Conversations.List()
	if len(remaining) > 0 {
		return s.SwitchConversation(ctx, remaining[0].ID)
	}
	_, err := s.NewConversation(ctx)
	return err
}

func (s *ChatService) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

func (s *ChatService) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SendMessage posts the composer text to the active conversation. Blank input
// or no active conversation is a no-op. The composer is cleared before the
// call and is not restored when the call fails.
func (s *ChatService) SendMessage(ctx context.Context) error {
	convID := s.store.ActiveConversation()
	s.mu.Lock()
	text := strings.TrimSpace(s.input)
	if text == "" || convID == "" {
		s.mu.Unlock()
		return nil
	}
	s.input = ""
	s.inflight++
	s.mu.Unlock()
	s.clearError()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	ctx, cancel := s.bind(ctx)
	defer cancel()

	resp, err := s.gw.SendChat(ctx, models.ChatRequest{ConversationID: convID, Message: text})
	if err != nil {
		s.failErr("send_message", err)
		return err
	}

	messages := resp.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	_, ok := s.store.Conversations.Update(convID, func(c models.Conversation) models.Conversation {
		c.Messages = messages
		return c
	})
	if !ok {
		// Deleted while the reply was in flight.
		s.stale("send_message")
		return nil
	}
	s.succeed("send_message")
	s.emit(event.MessagesReplacedEvent{ConversationID: convID, Count: len(messages)})
	return nil
}

// SendSuggestion fills the composer with text and sends it.
func (s *ChatService) SendSuggestion(ctx context.Context, text string) error {
	s.SetInput(text)
	return s.SendMessage(ctx)
}

func (s *ChatService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *ChatService) View() models.ChatView {
	active := s.store.ActiveConversation()
	v := models.ChatView{
		Conversations:        views.Summaries(s.store.Conversations.List()),
		ActiveConversationID: active,
		Messages:             []models.Message{},
		Input:                s.Input(),
		Loading:              s.Loading(),
		Error:                s.LastError(),
	}
	if conv, ok := s.store.Conversations.Get(active); ok {
		v.Messages = append(v.Messages, conv.Messages...)
	}
	return v
}

// Close tears the view down: in-flight calls are canceled and the
// conversation collection is dropped.
func (s *ChatService) Close() {
	s.endLifetime()
	s.store.Clear(store.KindConversations)
	s.mu.Lock()
	s.input = ""
	s.mu.Unlock()
}

// fixedMessage uses fallback for server errors and the transport message for
// network failures.
func fixedMessage(err error, fallback string) string {
	if gerr, ok := gateway.AsError(err); ok && gerr.Kind == gateway.KindNetwork {
		return gerr.Message
	}
	return fallback
}
