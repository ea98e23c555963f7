// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package postgres provides the PostgreSQL implementation of identity.UserStore.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// poolIface is the subset of *pgxpool.Pool the repository uses.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const userColumns = `id, username, email, password_hash, is_admin,
	bio, job_title, location, profile_image, contact_info, social_links,
	skills, experience, education, certifications, languages, interests,
	projects, profile_photo_url, profile_photo_id,
	reset_token_hash, reset_token_expires_at, created_at, updated_at`

// UserRepository implements identity.UserStore using PostgreSQL.
type UserRepository struct {
	pool poolIface
	now  func() time.Time
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool, now: time.Now}
}

// FindByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email))

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*identity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
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
	doc, err := encodeDocuments(user.ContactInfo, user.SocialLinks, user.Projects)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("operation", "encode user documents").Wrap(err)
	}

	photoURL, photoID := photoColumns(user.ProfilePhoto)
	resetHash, resetExpiry := resetColumns(user.Reset)

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.Bio,
		user.JobTitle,
		user.Location,
		user.ProfileImage,
		doc.contact,
		doc.social,
		textArray(user.Skills),
		textArray(user.Experience),
		textArray(user.Education),
		textArray(user.Certifications),
		textArray(user.Languages),
		textArray(user.Interests),
		doc.projects,
		photoURL,
		photoID,
		resetHash,
		resetExpiry,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return oops.Code("USER_EMAIL_TAKEN").
			With("email", user.Email).
			Wrap(identity.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// UpdateFields writes the assignments in update with one UPDATE statement.
func (r *UserRepository) UpdateFields(ctx context.Context, id ulid.ULID, update identity.UserUpdate) error {
	set, err := buildSet(update)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "encode update").
			With("id", id.String()).
			Wrap(err)
	}
	set.add("updated_at", r.now().UTC())
	idArg := set.arg(id.String())

	result, err := r.pool.Exec(ctx,
		`UPDATE users SET `+strings.Join(set.cols, ", ")+` WHERE id = `+idArg,
		set.args...)
	if isUniqueViolation(err) {
		return oops.Code("USER_EMAIL_TAKEN").
			With("id", id.String()).
			Wrap(identity.ErrDuplicate)
	}
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// DeleteByID removes a user.
func (r *UserRepository) DeleteByID(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// FindByValidResetHash retrieves the user holding hash with an expiry after now.
func (r *UserRepository) FindByValidResetHash(ctx context.Context, hash string, now time.Time) (*identity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
	`, hash, now.UTC())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_RESET_FAILED").
			With("operation", "get user by reset hash").
			Wrap(err)
	}
	return user, nil
}

// ConsumeResetToken swaps in the new password hash and clears the reset pair
// in a single conditional UPDATE. Of two concurrent callers holding the same
// token, only one matches the WHERE clause.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, id ulid.ULID, hash, newPasswordHash string, now time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = $2
		WHERE id = $3 AND reset_token_hash = $4 AND reset_token_expires_at > $2
	`, newPasswordHash, now.UTC(), id.String(), hash)
	if err != nil {
		return oops.Code("RESET_CONSUME_FAILED").
			With("operation", "consume reset token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("RESET_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// List returns users ordered by creation time, plus the total count.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*identity.User, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, oops.Code("USER_LIST_FAILED").With("operation", "count users").Wrap(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, oops.Code("USER_LIST_FAILED").With("operation", "query users").Wrap(err)
	}
	defer rows.Close()

	users := make([]*identity.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, oops.Code("USER_LIST_FAILED").With("operation", "iterate users").Wrap(err)
	}
	return users, total, nil
}

// Ping checks the connection.
func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// setClause accumulates "col = $n" fragments and their arguments.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) arg(v any) string {
	s.args = append(s.args, v)
	return fmt.Sprintf("$%d", len(s.args))
}

func (s *setClause) add(col string, v any) {
	s.cols = append(s.cols, col+" = "+s.arg(v))
}

func buildSet(u identity.UserUpdate) (*setClause, error) {
	set := &setClause{}
	addString := func(col string, v *string) {
		if v != nil {
			set.add(col, *v)
		}
	}
	addList := func(col string, v []string) {
		if v != nil {
			set.add(col, v)
		}
	}

	addString("username", u.Username)
	addString("email", u.Email)
	addString("password_hash", u.PasswordHash)
	addString("bio", u.Bio)
	addString("job_title", u.JobTitle)
	addString("location", u.Location)
	addString("profile_image", u.ProfileImage)

	if u.ContactInfo != nil {
		raw, err := json.Marshal(*u.ContactInfo)
		if err != nil {
			return nil, err
		}
		set.add("contact_info", raw)
	}
	if u.SocialLinks != nil {
		raw, err := json.Marshal(u.SocialLinks)
		if err != nil {
			return nil, err
		}
		set.add("social_links", raw)
	}

	addList("skills", u.Skills)
	addList("experience", u.Experience)
	addList("education", u.Education)
	addList("certifications", u.Certifications)
	addList("languages", u.Languages)
	addList("interests", u.Interests)

	if u.Projects != nil {
		raw, err := json.Marshal(u.Projects)
		if err != nil {
			return nil, err
		}
		set.add("projects", raw)
	}
	if u.ProfilePhoto != nil {
		set.add("profile_photo_url", u.ProfilePhoto.URL)
		set.add("profile_photo_id", u.ProfilePhoto.ExternalID)
	}

	switch {
	case u.ClearReset:
		set.cols = append(set.cols, "reset_token_hash = NULL", "reset_token_expires_at = NULL")
	case u.Reset != nil:
		set.add("reset_token_hash", u.Reset.Hash)
		set.add("reset_token_expires_at", u.Reset.ExpiresAt.UTC())
	}
	return set, nil
}

type documents struct {
	contact  []byte
	social   []byte
	projects []byte
}

func encodeDocuments(contact identity.ContactInfo, social map[string]string, projects []identity.Project) (documents, error) {
	var (
		doc documents
		err error
	)
	if doc.contact, err = json.Marshal(contact); err != nil {
		return doc, err
	}
	if social == nil {
		social = map[string]string{}
	}
	if doc.social, err = json.Marshal(social); err != nil {
		return doc, err
	}
	if projects == nil {
		projects = []identity.Project{}
	}
	doc.projects, err = json.Marshal(projects)
	return doc, err
}

func textArray(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func photoColumns(p *identity.ProfilePhoto) (url, id *string) {
	if p == nil {
		return nil, nil
	}
	return &p.URL, &p.ExternalID
}

func resetColumns(s *identity.ResetTokenState) (hash *string, expires *time.Time) {
	if s == nil {
		return nil, nil
	}
	at := s.ExpiresAt.UTC()
	return &s.Hash, &at
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*identity.User, error) {
	var (
		idStr        string
		user         identity.User
		contactRaw   []byte
		socialRaw    []byte
		projectsRaw  []byte
		photoURL     *string
		photoID      *string
		resetHash    *string
		resetExpires *time.Time
	)

	err := row.Scan(
		&idStr, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin,
		&user.Bio, &user.JobTitle, &user.Location, &user.ProfileImage, &contactRaw, &socialRaw,
		&user.Skills, &user.Experience, &user.Education, &user.Certifications, &user.Languages, &user.Interests,
		&projectsRaw, &photoURL, &photoID,
		&resetHash, &resetExpires, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers attach lookup context
		}
		return nil, oops.Code("USER_SCAN_FAILED").With("operation", "scan user").Wrap(err)
	}

	if user.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}
	if len(contactRaw) > 0 {
		if err := json.Unmarshal(contactRaw, &user.ContactInfo); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").With("column", "contact_info").Wrap(err)
		}
	}
	if len(socialRaw) > 0 {
		if err := json.Unmarshal(socialRaw, &user.SocialLinks); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").With("column", "social_links").Wrap(err)
		}
	}
	if len(projectsRaw) > 0 {
		if err := json.Unmarshal(projectsRaw, &user.Projects); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").With("column", "projects").Wrap(err)
		}
	}
	if photoURL != nil || photoID != nil {
		user.ProfilePhoto = &identity.ProfilePhoto{URL: deref(photoURL), ExternalID: deref(photoID)}
	}
	if resetHash != nil && resetExpires != nil {
		user.Reset = &identity.ResetTokenState{Hash: *resetHash, ExpiresAt: resetExpires.UTC()}
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Compile-time interface check.
var _ identity.UserStore = (*UserRepository)(nil)
