package store

import (
	"context"

	"shop-service/internal/models"
)

const userSelect = `
	SELECT u.id, u.name, u.email, u.phone, u.address, u.gender, u.verify, u.password,
		u.role_id, r.name AS role, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// ListUsers returns a page of users filtered by name
func (q *Queries) ListUsers(ctx context.Context, params ListParams) ([]models.User, int, error) {
	var total int
	if err := q.get(ctx, &total,
		"SELECT COUNT(*) FROM users WHERE name ILIKE '%' || $1::text || '%'",
		params.Search); err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	err := q.selectAll(ctx, &users, userSelect+`
		WHERE u.name ILIKE '%' || $1::text || '%'
		ORDER BY u.id
		LIMIT $2 OFFSET $3`,
		params.Search, params.Limit, params.Offset())
	return users, total, err
}

// GetUserByID retrieves a user with its role name
func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := q.get(ctx, &user, userSelect+" WHERE u.id = $1", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := q.get(ctx, &user, userSelect+" WHERE LOWER(u.email) = LOWER($1)", email); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user. The role is resolved from user.Role.
func (q *Queries) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, phone, address, gender, verify, password, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, (SELECT id FROM roles WHERE name = $8))
		RETURNING id, role_id, created_at, updated_at`

	return q.get(ctx, user, query,
		user.Name, user.Email, user.Phone, user.Address, user.Gender, user.Verify,
		user.PasswordHash, user.Role)
}

// UpdateUser overwrites profile fields, verification flag and role
func (q *Queries) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, address = $3, gender = $4, verify = $5,
			role_id = (SELECT id FROM roles WHERE name = $6), updated_at = NOW()
		WHERE id = $7
		RETURNING role_id, updated_at`

	return q.get(ctx, user, query,
		user.Name, user.Phone, user.Address, user.Gender, user.Verify, user.Role, user.ID)
}

// UpdateUserPassword stores a new password hash
func (q *Queries) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	return q.exec(ctx,
		"UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2", passwordHash, userID)
}

// SetUserVerified flips the verification flag on
func (q *Queries) SetUserVerified(ctx context.Context, userID int64) error {
	return q.exec(ctx,
		"UPDATE users SET verify = TRUE, updated_at = NOW() WHERE id = $1", userID)
}

// DeleteUser deletes a user row
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	return q.exec(ctx, "DELETE FROM users WHERE id = $1", id)
}
