package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
	"github.com/iliyamo/swim-club-backend/internal/utils"
)

// ErrInvalidCredentials is returned by Login, Refresh and RefreshAccess.
// Handlers answer it with 401.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User listing bounds.
const (
	DefaultUserLimit = 100
	MaxUserLimit     = 100
)

// AuthConfig holds token and hashing settings.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresAt    time.Time  `json:"expires_at"`
	User         model.User `json:"user"`
}

// UserService handles accounts and sessions.
type UserService struct {
	Deps
	auth AuthConfig
}

func NewUserService(d Deps, auth AuthConfig) *UserService {
	if auth.JWTSecret == "" {
		panic("empty JWT secret passed to NewUserService")
	}
	return &UserService{Deps: mustDeps(d, "NewUserService"), auth: auth}
}

// UserInput creates an account. Role is ignored by Register.
type UserInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber *string
	Role        string
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func checkPassword(p string) error {
	if len(p) < utils.MinPasswordLength {
		return InvalidInput("password must be at least 8 characters")
	}
	return nil
}

func (s *UserService) createUser(ctx context.Context, tx repository.Tx, in UserInput) (model.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.FullName) == "" {
		return model.User{}, InvalidInput("email and full_name are required")
	}
	if err := checkPassword(in.Password); err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(in.Password, s.auth.BcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return model.User{}, InvalidInput("password is too long")
		}
		return model.User{}, err
	}
	u := model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         in.Role,
		PhoneNumber:  in.PhoneNumber,
		IsActive:     true,
	}
	if err := tx.Users().Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, InvalidInput("email already registered")
		}
		return model.User{}, err
	}
	return u, nil
}

// issue creates an access token and stores a new refresh token.
func (s *UserService) issue(ctx context.Context, tx repository.Tx, u model.User) (TokenPair, error) {
	at, err := utils.NewAccessToken(s.auth.JWTSecret, u.ID, u.Role, s.auth.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	rt, err := utils.NewRefreshToken(s.auth.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := tx.Tokens().StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: at.Token, RefreshToken: rt.Raw, TokenType: "Bearer", ExpiresAt: at.Exp, User: u}, nil
}

// Register is public self-signup and always creates a PARENT.
func (s *UserService) Register(ctx context.Context, in UserInput) (TokenPair, error) {
	in.Role = model.RoleParent
	var out TokenPair
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		u, err := s.createUser(ctx, tx, in)
		if err != nil {
			return err
		}
		out, err = s.issue(ctx, tx, u)
		return err
	})
	return out, fromStore(err, "user")
}

// Login checks the password of an active account.
func (s *UserService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var out TokenPair
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().GetByEmail(ctx, normalizeEmail(email))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
			return ErrInvalidCredentials
		}
		out, err = s.issue(ctx, tx, u)
		return err
	})
	return out, fromStore(err, "user")
}

// Refresh rotates a refresh token: the old one is revoked and a new pair
// issued.
func (s *UserService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	var out TokenPair
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		u, err := s.userForRefresh(ctx, tx, raw)
		if err != nil {
			return err
		}
		if err := tx.Tokens().RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return err
		}
		out, err = s.issue(ctx, tx, u)
		return err
	})
	return out, fromStore(err, "user")
}

// RefreshAccess issues a new access token and leaves the refresh token
// untouched.
func (s *UserService) RefreshAccess(ctx context.Context, raw string) (utils.AccessToken, error) {
	var out utils.AccessToken
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		u, err := s.userForRefresh(ctx, tx, raw)
		if err != nil {
			return err
		}
		out, err = utils.NewAccessToken(s.auth.JWTSecret, u.ID, u.Role, s.auth.AccessTTL)
		return err
	})
	return out, fromStore(err, "user")
}

func (s *UserService) userForRefresh(ctx context.Context, tx repository.Tx, raw string) (model.User, error) {
	if raw == "" {
		return model.User{}, ErrInvalidCredentials
	}
	uid, err := tx.Tokens().ValidateRefresh(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	u, err := tx.Users().GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !u.IsActive {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Logout revokes one refresh token when raw is given, otherwise every
// token of the caller.
func (s *UserService) Logout(ctx context.Context, id Identity, raw string) error {
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if raw != "" {
			return tx.Tokens().RevokeByHash(ctx, utils.HashRefreshRaw(raw))
		}
		if id.UserID == 0 {
			return InvalidInput("refresh_token is required")
		}
		return tx.Tokens().RevokeAllForUser(ctx, id.UserID)
	})
	return fromStore(err, "user")
}

func (s *UserService) Me(ctx context.Context, id Identity) (model.User, error) {
	var out model.User
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Users().GetByID(ctx, id.UserID)
		return err
	})
	return out, fromStore(err, "user")
}

// ChangePassword requires the current password and revokes all sessions.
func (s *UserService) ChangePassword(ctx context.Context, id Identity, oldPassword, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().GetByID(ctx, id.UserID)
		if err != nil {
			return fromStore(err, "user")
		}
		if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
			return InvalidInput("current password is incorrect")
		}
		hash, err := utils.HashPassword(newPassword, s.auth.BcryptCost)
		if err != nil {
			if errors.Is(err, utils.ErrPasswordTooLong) {
				return InvalidInput("password is too long")
			}
			return err
		}
		if err := tx.Users().UpdatePassword(ctx, u.ID, hash); err != nil {
			return err
		}
		return tx.Tokens().RevokeAllForUser(ctx, u.ID)
	})
	return fromStore(err, "user")
}

// AdminCreate creates an account with any role.
func (s *UserService) AdminCreate(ctx context.Context, id Identity, in UserInput) (model.User, error) {
	if !id.IsOwner() {
		return model.User{}, ErrForbidden
	}
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = model.RoleParent
	}
	if !model.ValidRole(in.Role) {
		return model.User{}, InvalidInput("role must be OWNER, COACH or PARENT")
	}
	var out model.User
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		out, err = s.createUser(ctx, tx, in)
		return err
	})
	return out, fromStore(err, "user")
}

// List pages through accounts, optionally filtered by role. limit defaults
// to and is capped at 100.
func (s *UserService) List(ctx context.Context, id Identity, role string, skip, limit int) ([]model.User, error) {
	if !id.IsStaff() {
		return nil, ErrForbidden
	}
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != "" && !model.ValidRole(role) {
		return nil, InvalidInput("role must be OWNER, COACH or PARENT")
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	if limit > MaxUserLimit {
		limit = MaxUserLimit
	}
	var out []model.User
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Users().List(ctx, role, skip, limit)
		return err
	})
	return out, fromStore(err, "user")
}

// Delete removes an account. Coach references are cleared first; an
// account that still owns members is refused with a linked-data error.
func (s *UserService) Delete(ctx context.Context, id Identity, userID uint64) error {
	if !id.IsOwner() {
		return ErrForbidden
	}
	if id.UserID == userID {
		return InvalidState("cannot delete your own account")
	}
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return fromStore(err, "user")
		}
		if u.Role == model.RoleCoach {
			if err := tx.Users().DetachCoach(ctx, userID); err != nil {
				return err
			}
		}
		return removeAccount(ctx, tx, userID)
	})
	return fromStore(err, "user")
}
