package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store keeps the bank's documents as JSONB rows in Postgres. Each
// collection is a table with the document body plus the columns that
// need indexing.
type Store struct {
	pool *pgxpool.Pool
}

type userDocument struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Balance  float64 `json:"balance"`
}

type notificationDocument struct {
	Message string `json:"message"`
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", translate(err))
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + models.UsersCollection + ` (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS ` + models.NotificationsCollection + ` (
			id BIGSERIAL PRIMARY KEY,
			document JSONB NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS notifications_timestamp_idx ON ` + models.NotificationsCollection + ` (timestamp DESC);`,
		`CREATE TABLE IF NOT EXISTS ` + models.TransactionsCollection + ` (
			id BIGSERIAL PRIMARY KEY,
			document JSONB NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", translate(err))
		}
	}
	return nil
}

// CreateUser inserts a new user row; the UNIQUE constraint on username
// reports duplicates.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (username, document)
		VALUES ($1, $2)
		RETURNING id, document, created_at;
	`
	body, err := json.Marshal(userDocument{
		Username: user.Username,
		Password: user.PasswordHash,
		Balance:  user.Balance.InexactFloat64(),
	})
	if err != nil {
		return models.User{}, fmt.Errorf("encode user: %w", err)
	}
	row := s.pool.QueryRow(ctx, query, user.Username, body)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
	SELECT id, document, created_at
	FROM users
	WHERE username = $1;
	`
	row := s.pool.QueryRow(ctx, query, username)
	return scanUser(row)
}

// Notifications streams the feed newest first.
func (s *Store) Notifications(ctx context.Context, limit int64) iter.Seq2[models.Notification, error] {
	return func(yield func(models.Notification, error) bool) {
		query := `SELECT id, document, timestamp FROM notifications ORDER BY timestamp DESC`
		args := []any{}
		if limit > 0 {
			query += ` LIMIT $1`
			args = append(args, limit)
		}
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			yield(models.Notification{}, translate(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id   int64
				body []byte
				ts   time.Time
				doc  notificationDocument
			)
			if err := rows.Scan(&id, &body, &ts); err != nil {
				yield(models.Notification{}, translate(err))
				return
			}
			if err := json.Unmarshal(body, &doc); err != nil {
				yield(models.Notification{}, fmt.Errorf("decode notification %d: %w", id, err))
				return
			}
			n := models.Notification{ID: strconv.FormatInt(id, 10), Message: doc.Message, Timestamp: ts}
			if !yield(n, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Notification{}, translate(err))
		}
	}
}

// InsertNotifications writes notes in a single batch.
func (s *Store) InsertNotifications(ctx context.Context, notes []models.Notification) error {
	batch := &pgx.Batch{}
	for _, n := range notes {
		body, err := json.Marshal(notificationDocument{Message: n.Message})
		if err != nil {
			return fmt.Errorf("encode notification: %w", err)
		}
		batch.Queue(`INSERT INTO notifications (document, timestamp) VALUES ($1, $2)`, body, n.Timestamp)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert notifications: %w", translate(err))
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		id   int64
		body []byte
		user models.User
		doc  userDocument
	)
	if err := row.Scan(&id, &body, &user.CreatedAt); err != nil {
		return models.User{}, translate(err)
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.User{}, fmt.Errorf("decode user %d: %w", id, err)
	}
	user.ID = strconv.FormatInt(id, 10)
	user.Username = doc.Username
	user.PasswordHash = doc.Password
	user.Balance = decimal.NewFromFloat(doc.Balance)
	return user, nil
}

func translate(err error) error {
	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &connErr), pgconn.Timeout(err):
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	default:
		return err
	}
}
