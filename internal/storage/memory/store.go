// Package memory is a process-local Store used by tests and the
// STORAGE_DRIVER=memory mode. Nothing survives a restart.
package memory

import (
	"context"
	"iter"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users keyed by username and notifications in insertion order.
type Store struct {
	mu            sync.RWMutex
	seq           int64
	users         map[string]models.User
	notifications []models.Notification
	now           func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{users: make(map[string]models.User), now: time.Now}
}

// CreateUser inserts user, failing with storage.ErrAlreadyExists when the
// username is taken. The check and the insert happen under one lock.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.seq++
	user.ID = strconv.FormatInt(s.seq, 10)
	user.CreatedAt = s.now().UTC()
	s.users[user.Username] = user
	return user, nil
}

// FindByUsername returns the user with exactly this username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// Notifications snapshots the feed when iteration starts and yields it
// newest first.
func (s *Store) Notifications(ctx context.Context, limit int64) iter.Seq2[models.Notification, error] {
	return func(yield func(models.Notification, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(models.Notification{}, err)
			return
		}
		s.mu.RLock()
		snapshot := slices.Clone(s.notifications)
		s.mu.RUnlock()

		slices.SortStableFunc(snapshot, func(a, b models.Notification) int {
			return b.Timestamp.Compare(a.Timestamp)
		})
		if limit > 0 && int64(len(snapshot)) > limit {
			snapshot = snapshot[:limit]
		}
		for _, n := range snapshot {
			if !yield(n, nil) {
				return
			}
		}
	}
}

// InsertNotifications appends notes to the feed.
func (s *Store) InsertNotifications(ctx context.Context, notes []models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range notes {
		s.seq++
		n.ID = strconv.FormatInt(s.seq, 10)
		s.notifications = append(s.notifications, n)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
