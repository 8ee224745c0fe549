// Package auth implements the toy credential layer: a registered-users
// list and a session record, both persisted as slots next to the
// financial document. Login matches by email only; passwords are
// accepted and ignored.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"laplata/internal/core"
	"laplata/internal/ledger"
	applog "laplata/internal/log"
	"laplata/internal/storage"
)

const (
	UsersKey = "la-plata-users"
	StateKey = "la-plata-auth"
)

var (
	ErrUnknownEmail = errors.New("no user with that email")
	ErrEmailTaken   = errors.New("email already registered")
)

// State is the persisted session record.
type State struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	User            *core.User `json:"user"`
}

type Service struct {
	kv storage.KV
}

func NewService(kv storage.KV) *Service {
	return &Service{kv: kv}
}

func demoUsers() []core.User {
	return []core.User{
		{
			ID:     "1",
			Name:   "João Silva",
			Email:  "joao@email.com",
			Avatar: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100&h=100&fit=crop&crop=face",
		},
	}
}

// Users returns the registered users, seeding the demo user on first
// use. A corrupted slot is reseeded rather than crashing.
func (s *Service) Users(ctx context.Context) []core.User {
	raw, ok, err := s.kv.Get(ctx, UsersKey)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read users slot", applog.FieldSlotKey, UsersKey, applog.FieldError, err)
		return demoUsers()
	}
	if ok {
		var users []core.User
		if err := json.Unmarshal([]byte(raw), &users); err == nil {
			return users
		}
		slog.ErrorContext(ctx, "Stored users are unparseable, reseeding", applog.FieldSlotKey, UsersKey, applog.FieldError, err)
	}

	users := demoUsers()
	s.saveUsers(ctx, users)
	return users
}

func (s *Service) saveUsers(ctx context.Context, users []core.User) {
	raw, err := json.Marshal(users)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to serialize users", applog.FieldError, err)
		return
	}
	if err := s.kv.Put(ctx, UsersKey, string(raw)); err != nil {
		slog.ErrorContext(ctx, "Failed to persist users", applog.FieldSlotKey, UsersKey, applog.FieldError, err)
	}
}

// SaveUser upserts a user record by id.
func (s *Service) SaveUser(ctx context.Context, user core.User) {
	users := s.Users(ctx)
	replaced := false
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, user)
	}
	s.saveUsers(ctx, users)
}

// Current returns the persisted session state. Missing or corrupted
// state reads as signed out.
func (s *Service) Current(ctx context.Context) State {
	raw, ok, err := s.kv.Get(ctx, StateKey)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read auth state", applog.FieldSlotKey, StateKey, applog.FieldError, err)
		return State{}
	}
	if !ok {
		return State{}
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		slog.ErrorContext(ctx, "Stored auth state is unparseable", applog.FieldSlotKey, StateKey, applog.FieldError, err)
		return State{}
	}
	return state
}

func (s *Service) saveState(ctx context.Context, state State) {
	raw, err := json.Marshal(state)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to serialize auth state", applog.FieldError, err)
		return
	}
	if err := s.kv.Put(ctx, StateKey, string(raw)); err != nil {
		slog.ErrorContext(ctx, "Failed to persist auth state", applog.FieldSlotKey, StateKey, applog.FieldError, err)
	}
}

// Login matches the email against the registered users. The password
// is accepted but never checked. An unknown email is an explicit
// no-match result, not a hard failure.
func (s *Service) Login(ctx context.Context, email, _ string) (*core.User, error) {
	for _, u := range s.Users(ctx) {
		if u.Email == email {
			user := u
			s.saveState(ctx, State{IsAuthenticated: true, User: &user})
			slog.InfoContext(ctx, "User logged in", "email", email)
			return &user, nil
		}
	}
	return nil, ErrUnknownEmail
}

// Register creates a user unless the exact email already exists, then
// signs the new user in.
func (s *Service) Register(ctx context.Context, name, email, _ string) (*core.User, error) {
	for _, u := range s.Users(ctx) {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}

	user := core.User{ID: ledger.NextID(), Name: name, Email: email}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	s.SaveUser(ctx, user)
	s.saveState(ctx, State{IsAuthenticated: true, User: &user})
	slog.InfoContext(ctx, "User registered", "email", email)
	return &user, nil
}

// Logout clears the session.
func (s *Service) Logout(ctx context.Context) {
	s.saveState(ctx, State{})
}
