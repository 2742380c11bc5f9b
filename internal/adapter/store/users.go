package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/port"
	"github.com/lib/pq"
)

const userColumns = `id, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(avatar_url, ''), organization_id, is_active, is_verified, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.AvatarURL, &u.OrganizationID, &u.IsActive, &u.IsVerified,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// CreateUser inserts a new user account.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (email, password_hash, first_name, last_name, avatar_url, organization_id, is_active, is_verified)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + userColumns

	created, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, nullStr(u.FirstName), nullStr(u.LastName),
		nullStr(u.AvatarURL), u.OrganizationID, u.IsActive, u.IsVerified,
	))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user %s: %w", u.Email, port.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// GetUserByEmail retrieves a user with roles and permissions expanded.
// Not tenant-scoped: email is globally unique and this path serves login.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if err := s.loadRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByID retrieves a user by ID with roles expanded.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.loadRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser retrieves a user scoped to an organization.
func (s *PostgresStore) GetUser(ctx context.Context, id, organizationID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND organization_id = $2`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id, organizationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.loadRoles(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users in an organization.
func (s *PostgresStore) ListUsers(ctx context.Context, organizationID string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.loadRoles(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// UpdateUser updates mutable profile fields.
func (s *PostgresStore) UpdateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `UPDATE users
	          SET first_name = $1, last_name = $2, avatar_url = $3, is_active = $4, is_verified = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING ` + userColumns

	updated, err := scanUser(s.db.QueryRowContext(ctx, query,
		nullStr(u.FirstName), nullStr(u.LastName), nullStr(u.AvatarURL),
		u.IsActive, u.IsVerified, u.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", u.ID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// DeactivateUser archives an account. Rows are never hard-deleted.
func (s *PostgresStore) DeactivateUser(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// SetLastLogin stamps the last successful login time.
func (s *PostgresStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, at, id)
	return err
}

// AssignRole links a role to a user.
func (s *PostgresStore) AssignRole(ctx context.Context, userID, roleID string) error {
	query := `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
	          ON CONFLICT (user_id, role_id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, query, userID, roleID)
	return err
}

// RemoveRole unlinks a role from a user.
func (s *PostgresStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user role assignment: %w", port.ErrNotFound)
	}
	return nil
}

// GetRole retrieves a role with its permissions.
func (s *PostgresStore) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	query := `SELECT id, name, COALESCE(description, ''), is_system, is_default FROM roles WHERE id = $1`

	var r domain.Role
	err := s.db.QueryRowContext(ctx, query, roleID).Scan(&r.ID, &r.Name, &r.Description, &r.IsSystem, &r.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %s: %w", roleID, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	perms, err := s.rolePermissions(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Permissions = perms
	return &r, nil
}

// DefaultRole returns the role marked as default, or nil when none exists.
func (s *PostgresStore) DefaultRole(ctx context.Context) (*domain.Role, error) {
	query := `SELECT id, name, COALESCE(description, ''), is_system, is_default FROM roles WHERE is_default = TRUE LIMIT 1`

	var r domain.Role
	err := s.db.QueryRowContext(ctx, query).Scan(&r.ID, &r.Name, &r.Description, &r.IsSystem, &r.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("default role: %w", err)
	}
	return &r, nil
}

// loadRoles expands a user's roles and their permission sets.
func (s *PostgresStore) loadRoles(ctx context.Context, u *domain.User) error {
	query := `SELECT r.id, r.name, COALESCE(r.description, ''), r.is_system, r.is_default
	          FROM roles r
	          JOIN user_roles ur ON ur.role_id = r.id
	          WHERE ur.user_id = $1
	          ORDER BY r.name ASC`

	rows, err := s.db.QueryContext(ctx, query, u.ID)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var r domain.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsSystem, &r.IsDefault); err != nil {
			return fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range roles {
		perms, err := s.rolePermissions(ctx, roles[i].ID)
		if err != nil {
			return err
		}
		roles[i].Permissions = perms
	}
	u.Roles = roles
	return nil
}

func (s *PostgresStore) rolePermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	query := `SELECT p.id, p.name, p.resource, p.action, COALESCE(p.description, '')
	          FROM permissions p
	          JOIN role_permissions rp ON rp.permission_id = p.id
	          WHERE rp.role_id = $1
	          ORDER BY p.name ASC`

	rows, err := s.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
