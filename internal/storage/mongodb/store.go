package mongodb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const connectTimeout = 10 * time.Second

// Store provides MongoDB-backed persistence for users and notifications.
type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	notifications *mongo.Collection
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	Balance   float64            `bson:"balance"`
	CreatedAt time.Time          `bson:"created_at,omitempty"`
}

type notificationDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Message   string             `bson:"message"`
	Timestamp time.Time          `bson:"timestamp"`
}

// NewStore connects to uri, verifies the connection and ensures indexes.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", translate(err))
	}

	db := client.Database(database)
	s := &Store{
		client:        client,
		users:         db.Collection(models.UsersCollection),
		notifications: db.Collection(models.NotificationsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// ensureIndexes makes username unique so concurrent registrations of the
// same name cannot both succeed.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", translate(err))
	}
	_, err = s.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return fmt.Errorf("create notifications index: %w", translate(err))
	}
	return nil
}

// CreateUser inserts a new user document.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	doc := userDocument{
		Username:  user.Username,
		Password:  user.PasswordHash,
		Balance:   user.Balance.InexactFloat64(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toModel(), nil
}

// FindByUsername fetches a user by exact username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		return models.User{}, translate(err)
	}
	return doc.toModel(), nil
}

// Notifications streams the feed sorted by timestamp, newest first.
func (s *Store) Notifications(ctx context.Context, limit int64) iter.Seq2[models.Notification, error] {
	return func(yield func(models.Notification, error) bool) {
		opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
		if limit > 0 {
			opts.SetLimit(limit)
		}
		cur, err := s.notifications.Find(ctx, bson.D{}, opts)
		if err != nil {
			yield(models.Notification{}, translate(err))
			return
		}
		defer cur.Close(context.WithoutCancel(ctx))

		for cur.Next(ctx) {
			var doc notificationDocument
			if err := cur.Decode(&doc); err != nil {
				yield(models.Notification{}, fmt.Errorf("decode notification: %w", err))
				return
			}
			if !yield(doc.toModel(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(models.Notification{}, translate(err))
		}
	}
}

// InsertNotifications writes notes in one batch.
func (s *Store) InsertNotifications(ctx context.Context, notes []models.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	docs := make([]any, 0, len(notes))
	for _, n := range notes {
		docs = append(docs, notificationDocument{Message: n.Message, Timestamp: n.Timestamp.UTC()})
	}
	if _, err := s.notifications.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert notifications: %w", translate(err))
	}
	return nil
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Balance:      decimal.NewFromFloat(d.Balance),
		CreatedAt:    d.CreatedAt,
	}
}

func (d notificationDocument) toModel() models.Notification {
	return models.Notification{ID: d.ID.Hex(), Message: d.Message, Timestamp: d.Timestamp}
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	var selErr topology.ServerSelectionError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case errors.As(err, &selErr),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsNetworkError(err),
		mongo.IsTimeout(err):
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	default:
		return err
	}
}
