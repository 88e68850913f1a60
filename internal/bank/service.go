// Package bank holds the MoneyHive operations behind the UI: registering
// and authenticating customers, reading the notification feed and taking
// customer-service messages.
package bank

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

// User-facing outcome messages.
const (
	MsgRegistered         = "Registration successful!"
	MsgDuplicateUsername  = "Username already exists."
	MsgInvalidCredentials = "Invalid username or password."
	MsgSupportReceived    = "Your message has been sent. We will get back to you shortly!"
	MsgUnavailable        = "Service unavailable, please try again later."
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("username and password are required")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	Dummy() string
}

// SupportMessage is what the customer-service form submits.
type SupportMessage struct {
	Name    string
	Email   string
	Message string
}

// Service wires credentials and the notification feed to storage.
type Service struct {
	users  storage.UserStore
	notes  storage.NotificationStore
	hasher PasswordHasher
	log    zerolog.Logger
	// dummyHash is verified against when the username is unknown.
	dummyHash string
}

// NewService constructs the service.
func NewService(users storage.UserStore, notes storage.NotificationStore, hasher PasswordHasher, log zerolog.Logger) *Service {
	return &Service{
		users:     users,
		notes:     notes,
		hasher:    hasher,
		log:       log.With().Str("pkg", "bank").Logger(),
		dummyHash: hasher.Dummy(),
	}
}

// normalizeUsername is applied on every path that takes a username from a
// customer, so what was registered is what logs in.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Register creates a customer with a zero balance. Uniqueness is left to
// the store, so two racing registrations of one name yield exactly one
// user and one ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return models.User{}, ErrInvalidInput
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Balance:      decimal.Zero,
	})
	switch {
	case err == nil:
		s.log.Info().Str("username", username).Msg("user registered")
		return created, nil
	case errors.Is(err, storage.ErrAlreadyExists):
		return models.User{}, ErrDuplicateUsername
	case errors.Is(err, storage.ErrUnavailable):
		s.log.Error().Err(err).Msg("register: storage unavailable")
		return models.User{}, ErrServiceUnavailable
	default:
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
}

// Authenticate returns the user when username exists and password matches.
// An unknown username and a wrong password both give ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, normalizeUsername(username))
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return models.User{}, ErrInvalidCredentials
	case errors.Is(err, storage.ErrUnavailable):
		s.log.Error().Err(err).Msg("authenticate: storage unavailable")
		return models.User{}, ErrServiceUnavailable
	default:
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Lookup fetches a user by username for an already authenticated session.
func (s *Service) Lookup(ctx context.Context, username string) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, normalizeUsername(username))
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, storage.ErrNotFound):
		return models.User{}, ErrInvalidCredentials
	case errors.Is(err, storage.ErrUnavailable):
		return models.User{}, ErrServiceUnavailable
	default:
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
}

// Notifications yields the feed newest first; limit <= 0 means all of it.
// Storage outages surface as ErrServiceUnavailable.
func (s *Service) Notifications(ctx context.Context, limit int64) iter.Seq2[models.Notification, error] {
	return func(yield func(models.Notification, error) bool) {
		for n, err := range s.notes.Notifications(ctx, limit) {
			if err != nil {
				if errors.Is(err, storage.ErrUnavailable) {
					s.log.Error().Err(err).Msg("notifications: storage unavailable")
					err = ErrServiceUnavailable
				}
				yield(models.Notification{}, err)
				return
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

// CollectNotifications drains Notifications into a slice.
func (s *Service) CollectNotifications(ctx context.Context, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for n, err := range s.Notifications(ctx, limit) {
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ContactSupport acknowledges msg. Messages are not stored or forwarded
// anywhere yet.
func (s *Service) ContactSupport(ctx context.Context, msg SupportMessage) string {
	s.log.Debug().Ctx(ctx).Bool("has_email", msg.Email != "").Msg("support message received")
	return MsgSupportReceived
}
