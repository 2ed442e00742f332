package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

const userColumns = "id, email, password_hash, full_name, role, phone_number, is_active, created_at, updated_at"

// UserRepo persists accounts in the users table.
type UserRepo struct{ q DBTX }

func NewUserRepo(q DBTX) *UserRepo { return &UserRepo{q: q} }

func scanUser(row rowScanner) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &phone,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return model.User{}, translate(err)
	}
	u.PhoneNumber = stringPtr(phone)
	return u, nil
}

// Create inserts u and fills in its ID. A taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role, phone_number, is_active) VALUES (?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.FullName, u.Role, nullString(u.PhoneNumber), u.IsActive)
	if err != nil {
		return translate(err)
	}
	if u.ID, err = insertID(res); err != nil {
		return err
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail expects an already normalized (lower-cased, trimmed) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// List pages through users ordered by id. An empty role matches everyone.
func (r *UserRepo) List(ctx context.Context, role string, offset, limit int) ([]model.User, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE (? = '' OR role = ?) ORDER BY id LIMIT ? OFFSET ?",
		role, role, limit, offset)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.q.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return translate(err)
}

func (r *UserRepo) DetachCoach(ctx context.Context, coachID uint64) error {
	for _, q := range []string{
		"UPDATE schedules SET coach_id=NULL WHERE coach_id=?",
		"UPDATE attendance SET coach_id=NULL WHERE coach_id=?",
		"UPDATE member_skills SET coach_id=NULL WHERE coach_id=?",
	} {
		if _, err := r.q.ExecContext(ctx, q, coachID); err != nil {
			return translate(err)
		}
	}
	return nil
}

// Delete removes the account. Rows still pointing at it (children, payments
// via children) surface as ErrLinkedData.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return mustAffect(r.q.ExecContext(ctx, "DELETE FROM users WHERE id=?", id))
}
