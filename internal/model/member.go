package model

import "time"

// Member represents a club member account.  A member both authenticates
// against the API (email + password hash) and carries a club profile
// (name, membership type and status).  This struct corresponds to a row
// in the `members` table.
//
// Fields:
//  ID               – primary key identifier.
//  Email            – unique, lower-cased login email.
//  PasswordHash     – bcrypt hash of the password.
//  FullName         – display name of the member.
//  Role             – MEMBER or ADMIN.
//  MembershipType   – e.g. "annual", "monthly", "honorary".
//  MembershipStatus – active, expired or suspended.
//  CreatedAt        – timestamp when the member signed up.
//  UpdatedAt        – timestamp of last update.
type Member struct {
	ID               uint64    // members.id
	Email            string    // members.email
	PasswordHash     string    // members.password_hash
	FullName         string    // members.full_name
	Role             string    // members.role
	MembershipType   string    // members.membership_type
	MembershipStatus string    // members.membership_status
	CreatedAt        time.Time // members.created_at
	UpdatedAt        time.Time // members.updated_at
}
