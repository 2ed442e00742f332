package service

import (
	"context"
	"strings"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// MemberService manages the children registered under parent accounts.
type MemberService struct {
	Deps
}

func NewMemberService(d Deps) *MemberService {
	return &MemberService{Deps: mustDeps(d, "NewMemberService")}
}

// MemberInput is the writable part of a member. ParentID is only read by
// AdminCreate.
type MemberInput struct {
	FullName    string
	DateOfBirth model.Date
	Notes       *string
	ParentID    uint64
}

func (in MemberInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return InvalidInput("full_name is required")
	}
	if in.DateOfBirth.IsZero() {
		return InvalidInput("date_of_birth is required")
	}
	return nil
}

// Mine lists the caller's children.
func (s *MemberService) Mine(ctx context.Context, id Identity) ([]model.Member, error) {
	var out []model.Member
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Members().ListByParent(ctx, id.UserID)
		return err
	})
	return out, fromStore(err, "member")
}

// Create registers a child under the caller's own account.
func (s *MemberService) Create(ctx context.Context, id Identity, in MemberInput) (model.Member, error) {
	if !id.IsParent() && !id.IsOwner() {
		return model.Member{}, ErrForbidden
	}
	in.ParentID = id.UserID
	return s.create(ctx, in)
}

// AdminCreate registers a child under any existing account.
func (s *MemberService) AdminCreate(ctx context.Context, id Identity, in MemberInput) (model.Member, error) {
	if !id.IsOwner() {
		return model.Member{}, ErrForbidden
	}
	return s.create(ctx, in)
}

func (s *MemberService) create(ctx context.Context, in MemberInput) (model.Member, error) {
	if err := in.validate(); err != nil {
		return model.Member{}, err
	}
	var out model.Member
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Users().GetByID(ctx, in.ParentID); err != nil {
			return fromStore(err, "parent")
		}
		out = model.Member{
			ParentID:    in.ParentID,
			FullName:    strings.TrimSpace(in.FullName),
			DateOfBirth: in.DateOfBirth,
			Notes:       in.Notes,
			Active:      true,
		}
		return tx.Members().Create(ctx, &out)
	})
	return out, fromStore(err, "member")
}

// Update rewrites name, birth date and notes.
func (s *MemberService) Update(ctx context.Context, id Identity, memberID uint64, in MemberInput) (model.Member, error) {
	if err := in.validate(); err != nil {
		return model.Member{}, err
	}
	var out model.Member
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().GetForUpdate(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsOwner() && !id.owns(m) {
			return ErrForbidden
		}
		m.FullName = strings.TrimSpace(in.FullName)
		m.DateOfBirth = in.DateOfBirth
		m.Notes = in.Notes
		if err := tx.Members().Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, fromStore(err, "member")
}

// ListAll is the staff listing with parent contact details.
func (s *MemberService) ListAll(ctx context.Context, id Identity) ([]model.MemberListing, error) {
	if !id.IsStaff() {
		return nil, ErrForbidden
	}
	var out []model.MemberListing
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Members().ListAll(ctx)
		return err
	})
	return out, fromStore(err, "member")
}

// Deactivate clears the active flag and nothing else. Enrollments, history
// and payments stay as they are.
func (s *MemberService) Deactivate(ctx context.Context, id Identity, memberID uint64) error {
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().GetForUpdate(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsOwner() && !id.owns(m) {
			return ErrForbidden
		}
		return tx.Members().SetActive(ctx, memberID, false)
	})
	return fromStore(err, "member")
}

// PurgeResult reports whether the purge also removed the parent account.
type PurgeResult struct {
	ParentDeleted bool `json:"parent_deleted"`
}

// Purge hard-deletes a member with its attendance, enrollments and skills.
// When that leaves a PARENT account without children, the account goes too.
// Any remaining reference (a payment, for instance) aborts the whole purge
// with a linked-data error.
func (s *MemberService) Purge(ctx context.Context, id Identity, memberID uint64) (PurgeResult, error) {
	if !id.IsOwner() {
		return PurgeResult{}, ErrForbidden
	}
	var res PurgeResult
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().GetForUpdate(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if err := tx.Attendance().DeleteByMember(ctx, memberID); err != nil {
			return err
		}
		if err := tx.Enrollments().DeleteByMember(ctx, memberID); err != nil {
			return err
		}
		if err := tx.Skills().DeleteMemberSkills(ctx, memberID); err != nil {
			return err
		}
		if err := tx.Members().Delete(ctx, memberID); err != nil {
			return err
		}

		left, err := tx.Members().CountByParent(ctx, m.ParentID)
		if err != nil {
			return err
		}
		if left > 0 {
			return nil
		}
		parent, err := tx.Users().GetByID(ctx, m.ParentID)
		if err != nil {
			return fromStore(err, "parent")
		}
		if parent.Role != model.RoleParent {
			return nil
		}
		if err := removeAccount(ctx, tx, parent.ID); err != nil {
			return err
		}
		res.ParentDeleted = true
		return nil
	})
	return res, fromStore(err, "member")
}

// removeAccount drops a user's tokens and sent messages, detaches it from
// received messages and deletes it.
func removeAccount(ctx context.Context, tx repository.Tx, userID uint64) error {
	if err := tx.Tokens().DeleteForUser(ctx, userID); err != nil {
		return err
	}
	if err := tx.Messages().DeleteBySender(ctx, userID); err != nil {
		return err
	}
	if err := tx.Messages().DetachRecipient(ctx, userID); err != nil {
		return err
	}
	return tx.Users().Delete(ctx, userID)
}
