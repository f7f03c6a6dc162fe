package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database with generated ID and sequence
func (r *UserRepository) Create(user *models.User) error {
	sequence, err := NextSequence(r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	user.SetID(shared.GenerateID())
	user.SetSequence(sequence)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, sequence, spotify_user_id, email, display_name, avatar_url,
			access_token, refresh_token, token_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		user.ID(), sequence, user.SpotifyUserID(), user.Email(), user.DisplayName(), user.AvatarURL(),
		user.AccessToken(), user.RefreshToken(), user.TokenExpiresAt(), user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(id string) (*models.User, error) {
	query := userSelect + " WHERE id = ? AND deleted_at IS NULL"

	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// GetBySpotifyID retrieves a user by their Spotify account id
func (r *UserRepository) GetBySpotifyID(spotifyUserID string) (*models.User, error) {
	query := userSelect + " WHERE spotify_user_id = ? AND deleted_at IS NULL"

	user, err := scanUser(r.db.QueryRow(query, spotifyUserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return user, nil
}

// Upsert creates the user when their Spotify account is new, otherwise
// refreshes the stored profile and tokens. Returns the persisted user.
func (r *UserRepository) Upsert(user *models.User) (*models.User, error) {
	existing, err := r.GetBySpotifyID(user.SpotifyUserID())
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := r.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	existing.SetEmail(user.Email())
	existing.SetDisplayName(user.DisplayName())
	existing.SetAvatarURL(user.AvatarURL())
	existing.SetAccessToken(user.AccessToken())
	existing.SetRefreshToken(user.RefreshToken())
	existing.SetTokenExpiresAt(user.TokenExpiresAt())

	if err := r.Update(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Update modifies an existing user in the database
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	user.SetUpdatedAt(now)

	query := `
		UPDATE users
		SET email = ?, display_name = ?, avatar_url = ?,
			access_token = ?, refresh_token = ?, token_expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		user.Email(), user.DisplayName(), user.AvatarURL(),
		user.AccessToken(), user.RefreshToken(), user.TokenExpiresAt(), now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found or already deleted: %s", user.ID())
	}

	return nil
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all users matching the given criteria, excluding soft-deleted users
func (r *UserRepository) List(criteria map[string]any) ([]*models.User, error) {
	query := userSelect + " WHERE deleted_at IS NULL"
	args := []any{}

	if spotifyUserID, ok := criteria["spotify_user_id"].(string); ok && spotifyUserID != "" {
		query += " AND spotify_user_id = ?"
		args = append(args, spotifyUserID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

const userSelect = `
	SELECT id, sequence, spotify_user_id, email, display_name, avatar_url,
		access_token, refresh_token, token_expires_at, created_at, updated_at, deleted_at
	FROM users
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		id             string
		sequence       int
		spotifyUserID  string
		email          sql.NullString
		displayName    sql.NullString
		avatarURL      sql.NullString
		accessToken    string
		refreshToken   string
		tokenExpiresAt time.Time
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &spotifyUserID, &email, &displayName, &avatarURL,
		&accessToken, &refreshToken, &tokenExpiresAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(sequence, models.Profile{
		ID:          spotifyUserID,
		Email:       email.String,
		DisplayName: displayName.String,
		AvatarURL:   avatarURL.String,
	})
	user.SetID(id)
	user.SetAccessToken(accessToken)
	user.SetRefreshToken(refreshToken)
	user.SetTokenExpiresAt(tokenExpiresAt)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		user.SetDeletedAt(&deletedAt.Time)
	}

	return user, nil
}
