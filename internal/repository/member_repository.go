package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/utils"
)

// MemberRepo persists club member accounts and profiles.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const memberCols = "id,email,password_hash,full_name,role,membership_type,membership_status,created_at,updated_at"

func scanMember(row *sql.Row) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.FullName, &m.Role,
		&m.MembershipType, &m.MembershipStatus, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a member and returns its ID. Emails are normalized to
// lower case; duplicate emails map to ErrEmailExists.
func (r *MemberRepo) Create(ctx context.Context, email, password, fullName, role, membershipType string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO members (email, password_hash, full_name, role, membership_type, membership_status) VALUES (?,?,?,?,?,'active')",
		email, hash, fullName, role, membershipType)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanMember(r.DB.QueryRowContext(ctx,
		"SELECT "+memberCols+" FROM members WHERE email=? LIMIT 1", email))
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	return scanMember(r.DB.QueryRowContext(ctx,
		"SELECT "+memberCols+" FROM members WHERE id=? LIMIT 1", id))
}

// List returns all members ordered by signup date, newest first.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memberCols+" FROM members ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.FullName, &m.Role,
			&m.MembershipType, &m.MembershipStatus, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMembership sets the membership type and status of a member.
func (r *MemberRepo) UpdateMembership(ctx context.Context, id uint64, membershipType, membershipStatus string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET membership_type=?, membership_status=? WHERE id=?",
		membershipType, membershipStatus, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateProfile updates the member's own editable fields.
func (r *MemberRepo) UpdateProfile(ctx context.Context, id uint64, fullName string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE members SET full_name=? WHERE id=?", fullName, id)
	return err
}
