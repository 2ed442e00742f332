package model

import "time"

// Member is a child registered under a parent account.
type Member struct {
	ID          uint64    `json:"id"`
	ParentID    uint64    `json:"parent_id"`
	FullName    string    `json:"full_name"`
	DateOfBirth Date      `json:"date_of_birth"`
	Notes       *string   `json:"notes"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberListing is the staff view of a member, with the parent's contact
// details denormalized.
type MemberListing struct {
	ID          uint64  `json:"id"`
	FullName    string  `json:"full_name"`
	DateOfBirth Date    `json:"date_of_birth"`
	ParentName  *string `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
	Notes       *string `json:"notes"`
	Active      bool    `json:"active"`
}

// MemberWithParent is what roster-style reads return.
type MemberWithParent struct {
	Member
	ParentName  *string
	ParentPhone *string
	ParentRole  string
}
