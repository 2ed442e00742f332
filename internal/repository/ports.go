package repository

import (
	"context"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

// Store is the unit-of-work boundary over the record store.
//
// InTx runs fn inside one transaction: it commits when fn returns nil and
// rolls back otherwise. The *ForUpdate methods take row locks that are held
// until the transaction ends; callers lock a member before a schedule.
//
// View runs fn against a read-only view. Writes made from View are not
// guaranteed to be atomic.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx groups the per-entity repositories bound to one transaction.
type Tx interface {
	Users() UserStore
	Tokens() TokenStore
	Members() MemberStore
	Schedules() ScheduleStore
	Enrollments() EnrollmentStore
	Attendance() AttendanceStore
	Skills() SkillStore
	Messages() MessageStore
	Payments() PaymentStore
}

// DateRange is a half-open [From, To) interval of days. Zero bounds are open.
type DateRange struct {
	From model.Date
	To   model.Date
}

// Contains reports whether d falls within r.
func (r DateRange) Contains(d model.Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !d.Before(r.To) {
		return false
	}
	return true
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context, role string, offset, limit int) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	// DetachCoach clears coach references on schedules, attendance and
	// member skills so that a coach account can be removed.
	DetachCoach(ctx context.Context, coachID uint64) error
	Delete(ctx context.Context, id uint64) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owner of a live token, or ErrNotFound.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	DeleteForUser(ctx context.Context, userID uint64) error
}

type MemberStore interface {
	Create(ctx context.Context, m *model.Member) error
	Get(ctx context.Context, id uint64) (model.Member, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Member, error)
	ListByParent(ctx context.Context, parentID uint64) ([]model.Member, error)
	ListAll(ctx context.Context) ([]model.MemberListing, error)
	Update(ctx context.Context, m model.Member) error
	SetActive(ctx context.Context, id uint64, active bool) error
	CountByParent(ctx context.Context, parentID uint64) (int, error)
	CountActive(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uint64) error
}

type ScheduleStore interface {
	Create(ctx context.Context, s *model.Schedule) error
	Get(ctx context.Context, id uint64) (model.Schedule, error)
	GetForUpdate(ctx context.Context, id uint64) (model.Schedule, error)
	List(ctx context.Context, activeOnly bool) ([]model.Schedule, error)
	ListActiveByDay(ctx context.Context, dayCode string) ([]model.Schedule, error)
	Update(ctx context.Context, s model.Schedule) error
	Delete(ctx context.Context, id uint64) error
	AddCancellation(ctx context.Context, c *model.ScheduleCancellation) error
	ListCancellations(ctx context.Context, scheduleID uint64) ([]model.ScheduleCancellation, error)
	IsCancelled(ctx context.Context, scheduleID uint64, date model.Date) (bool, error)
}

type EnrollmentStore interface {
	Create(ctx context.Context, e *model.Enrollment) error
	Get(ctx context.Context, id uint64) (model.Enrollment, error)
	CountActiveBySchedule(ctx context.Context, scheduleID uint64) (int, error)
	CountActiveByMember(ctx context.Context, memberID uint64) (int, error)
	ActiveExists(ctx context.Context, memberID, scheduleID uint64) (bool, error)
	// ActiveCounts returns the active enrollment count per schedule id.
	// Schedules without enrollments are absent from the map.
	ActiveCounts(ctx context.Context) (map[uint64]int, error)
	ListActiveByMember(ctx context.Context, memberID uint64) ([]model.EnrollmentDetail, error)
	// Roster lists members actively enrolled in a schedule, by name.
	Roster(ctx context.Context, scheduleID uint64) ([]model.MemberWithParent, error)
	// ActiveScheduleIDsForParent lists schedules any child of the parent is
	// actively enrolled in.
	ActiveScheduleIDsForParent(ctx context.Context, parentID uint64) ([]uint64, error)
	Deactivate(ctx context.Context, id uint64, endDate model.Date) error
	DeleteByMember(ctx context.Context, memberID uint64) error
}

type AttendanceStore interface {
	ListBySchedule(ctx context.Context, scheduleID uint64, date model.Date) ([]model.Attendance, error)
	DeleteBySchedule(ctx context.Context, scheduleID uint64, date model.Date) (int64, error)
	InsertBatch(ctx context.Context, rows []model.Attendance) error
	// ListByMember returns records in range, newest first.
	ListByMember(ctx context.Context, memberID uint64, r DateRange) ([]model.Attendance, error)
	CountPresentOn(ctx context.Context, date model.Date) (int, error)
	CountPresentBySchedule(ctx context.Context, scheduleID uint64, date model.Date) (int, error)
	DeleteByMember(ctx context.Context, memberID uint64) error
}

type SkillStore interface {
	List(ctx context.Context) ([]model.Skill, error)
	Get(ctx context.Context, id uint64) (model.Skill, error)
	Create(ctx context.Context, s *model.Skill) error
	GetMemberSkill(ctx context.Context, memberID, skillID uint64) (model.MemberSkill, error)
	AddMemberSkill(ctx context.Context, ms *model.MemberSkill) error
	RemoveMemberSkill(ctx context.Context, memberID, skillID uint64) error
	ListMemberSkills(ctx context.Context, memberID uint64) ([]model.MemberSkill, error)
	DeleteMemberSkills(ctx context.Context, memberID uint64) error
}

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	// Inbox returns messages matching the filter, newest first, with
	// sender names filled in.
	Inbox(ctx context.Context, f model.InboxFilter) ([]model.Message, error)
	DeleteBySender(ctx context.Context, userID uint64) error
	DetachRecipient(ctx context.Context, userID uint64) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	// Latest returns the most recently recorded payments with member names.
	Latest(ctx context.Context, limit int) ([]model.Payment, error)
	SumForMonth(ctx context.Context, month, year int) (float64, error)
	// MonthlyTotals returns one row per month of year that has payments.
	MonthlyTotals(ctx context.Context, year int) ([]model.MonthlyRevenue, error)
	Debtors(ctx context.Context, month, year int) ([]model.Debtor, error)
	HasPayment(ctx context.Context, memberID uint64, month, year int) (bool, error)
}
