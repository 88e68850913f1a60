package storage

import (
	"context"
	"errors"
	"iter"

	"github.com/hongminglow/moneyhive-bank/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable indicates the database could not be reached.
var ErrUnavailable = errors.New("storage unavailable")

// UserStore captures persistence operations needed for credentials.
// CreateUser must enforce username uniqueness itself and report a
// conflict as ErrAlreadyExists.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// NotificationStore reads and seeds the notification feed.
type NotificationStore interface {
	// Notifications yields notifications newest first. The query runs when
	// iteration starts; limit <= 0 returns the whole collection. A failure
	// is yielded once as the error value and ends the sequence.
	Notifications(ctx context.Context, limit int64) iter.Seq2[models.Notification, error]
	InsertNotifications(ctx context.Context, notes []models.Notification) error
}

// Store is the full persistence surface of the application.
type Store interface {
	UserStore
	NotificationStore
	Close(ctx context.Context) error
}
