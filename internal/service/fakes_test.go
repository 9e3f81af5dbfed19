package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/events"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// memUserRepo is an in-memory UserRepository with the same atomicity contract
// as the Postgres implementation: AddWarn increments, records and escalates
// under one lock.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		result = append(result, *u)
	}
	return result, nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, username string, faction domain.Faction, discord string) error {
	return r.mutate(username, func(u *domain.User) {
		u.Faction = faction
		u.Discord = discord
	})
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.LastLogin = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memUserRepo) SetBan(_ context.Context, username string, ban domain.BanState) error {
	return r.mutate(username, func(u *domain.User) { u.Ban = ban })
}

func (r *memUserRepo) SetMute(_ context.Context, username string, mute domain.MuteState) error {
	return r.mutate(username, func(u *domain.User) { u.Mute = mute })
}

func (r *memUserRepo) SetRole(_ context.Context, username string, role domain.Role) error {
	return r.mutate(username, func(u *domain.User) { u.Role = role })
}

func (r *memUserRepo) AddWarn(_ context.Context, username, reason string, now time.Time) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return 0, false, pgx.ErrNoRows
	}
	u.Warns.Count++
	u.Warns.History = append(u.Warns.History, domain.Warn{Reason: reason, At: now})
	autoBanned := false
	if u.Warns.Count >= repository.WarnBanThreshold {
		until := now.Add(repository.WarnBanWindow)
		u.Ban = domain.BanState{Active: true, Until: &until, Reason: repository.WarnBanReason}
		autoBanned = true
	}
	return u.Warns.Count, autoBanned, nil
}

func (r *memUserRepo) mutate(username string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(u)
	return nil
}

// memChatRepo is an in-memory ChatRepository. Appends serialize on the lock
// and take sequence numbers from the chat's counter, mirroring the Postgres
// implementation's ordering guarantee.
type memChatRepo struct {
	mu    sync.Mutex
	chats map[string]*domain.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[string]*domain.Chat)}
}

func (r *memChatRepo) Create(_ context.Context, chat *domain.Chat, seed domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat.ID = uuid.NewString()
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	chat.MessageSeq = 1

	seed.ID = uuid.NewString()
	seed.ChatID = chat.ID
	seed.Seq = 1
	seed.CreatedAt = chat.CreatedAt
	chat.Messages = []domain.ChatMessage{seed}

	clone := cloneChat(chat)
	r.chats[chat.ID] = clone
	return nil
}

func (r *memChatRepo) GetByID(_ context.Context, id string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneChat(chat), nil
}

func (r *memChatRepo) ListAll(_ context.Context) ([]domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Chat, 0, len(r.chats))
	for _, chat := range r.chats {
		result = append(result, *cloneChat(chat))
	}
	return result, nil
}

func (r *memChatRepo) ListByOwner(_ context.Context, owner string) ([]domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Chat
	for _, chat := range r.chats {
		if chat.OwnerUsername == owner {
			result = append(result, *cloneChat(chat))
		}
	}
	return result, nil
}

func (r *memChatRepo) CountOpenByOwner(_ context.Context, owner string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, chat := range r.chats {
		if chat.OwnerUsername == owner && chat.Status == domain.ChatStatusOpen {
			count++
		}
	}
	return count, nil
}

func (r *memChatRepo) AppendMessage(_ context.Context, chatID string, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return pgx.ErrNoRows
	}
	chat.MessageSeq++
	msg.ID = uuid.NewString()
	msg.ChatID = chatID
	msg.Seq = chat.MessageSeq
	msg.CreatedAt = time.Now()
	chat.Messages = append(chat.Messages, *msg)
	chat.UpdatedAt = msg.CreatedAt
	return nil
}

func (r *memChatRepo) UpdateIssue(_ context.Context, chatID, issue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return pgx.ErrNoRows
	}
	chat.Issue = issue
	chat.UpdatedAt = time.Now()
	return nil
}

func (r *memChatRepo) SetStatus(_ context.Context, chatID string, status domain.ChatStatus, sysMsg domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return pgx.ErrNoRows
	}
	chat.Status = status
	chat.MessageSeq++
	sysMsg.ID = uuid.NewString()
	sysMsg.ChatID = chatID
	sysMsg.Seq = chat.MessageSeq
	sysMsg.CreatedAt = time.Now()
	chat.Messages = append(chat.Messages, sysMsg)
	chat.UpdatedAt = sysMsg.CreatedAt
	return nil
}

func cloneChat(chat *domain.Chat) *domain.Chat {
	clone := *chat
	clone.Messages = append([]domain.ChatMessage(nil), chat.Messages...)
	return &clone
}
