// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package mongostore provides a MongoDB implementation of identity.UserStore.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// CollectionName is the collection holding user documents.
const CollectionName = "users"

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, oops.Code("MONGO_CONNECT_FAILED").With("operation", "connect").Wrap(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // ping error wins
		return nil, oops.Code("MONGO_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return client, nil
}

// UserRepository implements identity.UserStore on a MongoDB collection.
type UserRepository struct {
	users *mongo.Collection
	now   func() time.Time
}

// NewUserRepository returns a repository over db's users collection.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the unique email index and the lookup indexes.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_normalized", Value: 1}},
			Options: options.Index().SetName("idx_email_normalized").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token_hash", Value: 1}},
			Options: options.Index().SetName("idx_reset_token_hash").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	if _, err := r.users.Indexes().CreateMany(ctx, models); err != nil {
		return oops.Code("MONGO_INDEX_FAILED").With("collection", CollectionName).Wrap(err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*identity.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err //nolint:wrapcheck // callers attach lookup context
	}
	return doc.toUser()
}

// FindByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	user, err := r.findOne(ctx, bson.D{{Key: "email_normalized", Value: identity.NormalizeEmail(email)}})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").With("operation", "get user by email").Wrap(err)
	}
	return user, nil
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*identity.User, error) {
	user, err := r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// Insert stores a new user.
func (r *UserRepository) Insert(ctx context.Context, user *identity.User) error {
	_, err := r.users.InsertOne(ctx, toDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return oops.Code("USER_EMAIL_TAKEN").With("email", user.Email).Wrap(identity.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// UpdateFields applies update with a single UpdateOne.
func (r *UserRepository) UpdateFields(ctx context.Context, id ulid.ULID, update identity.UserUpdate) error {
	result, err := r.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		updateDocument(update, r.now()))
	if mongo.IsDuplicateKeyError(err) {
		return oops.Code("USER_EMAIL_TAKEN").With("id", id.String()).Wrap(identity.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(identity.ErrNotFound)
	}
	return nil
}

// DeleteByID removes a user.
func (r *UserRepository) DeleteByID(ctx context.Context, id ulid.ULID) error {
	result, err := r.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.DeletedCount == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(identity.ErrNotFound)
	}
	return nil
}

func validResetFilter(hash string, now time.Time) bson.D {
	return bson.D{
		{Key: "reset_token_hash", Value: hash},
		{Key: "reset_token_expires_at", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	}
}

// FindByValidResetHash retrieves the user holding hash with an expiry after now.
func (r *UserRepository) FindByValidResetHash(ctx context.Context, hash string, now time.Time) (*identity.User, error) {
	user, err := r.findOne(ctx, validResetFilter(hash, now))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_RESET_FAILED").
			With("operation", "get user by reset hash").
			Wrap(err)
	}
	return user, nil
}

// ConsumeResetToken sets the password and unsets the reset pair in one
// document update whose filter re-checks the hash and expiry.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, id ulid.ULID, hash, newPasswordHash string, now time.Time) error {
	filter := append(bson.D{{Key: "_id", Value: id.String()}}, validResetFilter(hash, now)...)
	result, err := r.users.UpdateOne(ctx, filter, updateDocument(identity.UserUpdate{
		PasswordHash: &newPasswordHash,
		ClearReset:   true,
	}, now))
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "consume reset token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.Code("RESET_NOT_FOUND").With("id", id.String()).Wrap(identity.ErrNotFound)
	}
	return nil
}

// List returns users ordered by creation time, plus the total count.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*identity.User, int64, error) {
	total, err := r.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, oops.Code("USER_LIST_FAILED").With("operation", "count users").Wrap(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, oops.Code("USER_LIST_FAILED").With("operation", "find users").Wrap(err)
	}
	defer cursor.Close(ctx) //nolint:errcheck // read-only cursor

	users := make([]*identity.User, 0, limit)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, oops.Code("USER_DECODE_FAILED").With("operation", "decode user").Wrap(err)
		}
		user, err := doc.toUser()
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return users, total, nil
}

// Ping checks the primary is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.users.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ identity.UserStore = (*UserRepository)(nil)
