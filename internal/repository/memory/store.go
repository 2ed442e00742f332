// Package memory is an in-memory implementation of repository.Store. It is
// used by tests and by the server when STORE_DRIVER=memory.
//
// Every InTx call holds the store's write lock for the whole closure and
// works on a private copy of the data, which replaces the committed data
// only when the closure returns nil. Transactions are therefore fully
// serialized and a failed closure leaves no trace. Foreign key and unique
// constraints of the MySQL schema are emulated and reported through the
// same repository sentinels.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type tokenRow struct {
	userID    uint64
	hash      string
	expiresAt time.Time
	revoked   bool
}

type state struct {
	seq           uint64
	users         map[uint64]model.User
	tokens        map[uint64]tokenRow
	members       map[uint64]model.Member
	schedules     map[uint64]model.Schedule
	cancellations map[uint64]model.ScheduleCancellation
	enrollments   map[uint64]model.Enrollment
	attendance    map[uint64]model.Attendance
	skills        map[uint64]model.Skill
	memberSkills  map[uint64]model.MemberSkill
	messages      map[uint64]model.Message
	payments      map[uint64]model.Payment
}

func newState() *state {
	return &state{
		users:         map[uint64]model.User{},
		tokens:        map[uint64]tokenRow{},
		members:       map[uint64]model.Member{},
		schedules:     map[uint64]model.Schedule{},
		cancellations: map[uint64]model.ScheduleCancellation{},
		enrollments:   map[uint64]model.Enrollment{},
		attendance:    map[uint64]model.Attendance{},
		skills:        map[uint64]model.Skill{},
		memberSkills:  map[uint64]model.MemberSkill{},
		messages:      map[uint64]model.Message{},
		payments:      map[uint64]model.Payment{},
	}
}

// clone copies every table. Row values are replaced, never mutated in
// place, so a shallow copy per map is enough.
func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		users:         maps.Clone(s.users),
		tokens:        maps.Clone(s.tokens),
		members:       maps.Clone(s.members),
		schedules:     maps.Clone(s.schedules),
		cancellations: maps.Clone(s.cancellations),
		enrollments:   maps.Clone(s.enrollments),
		attendance:    maps.Clone(s.attendance),
		skills:        maps.Clone(s.skills),
		memberSkills:  maps.Clone(s.memberSkills),
		messages:      maps.Clone(s.messages),
		payments:      maps.Clone(s.payments),
	}
}

// nextID hands out ids from one sequence shared by all tables.
func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

// Store is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data *state
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps and token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{data: newState(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// View runs fn against the committed data under a read lock. fn must not
// write.
func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&tx{st: s.data, now: s.now})
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) Users() repository.UserStore             { return userRepo{t} }
func (t *tx) Tokens() repository.TokenStore           { return tokenRepo{t} }
func (t *tx) Members() repository.MemberStore         { return memberRepo{t} }
func (t *tx) Schedules() repository.ScheduleStore     { return scheduleRepo{t} }
func (t *tx) Enrollments() repository.EnrollmentStore { return enrollmentRepo{t} }
func (t *tx) Attendance() repository.AttendanceStore  { return attendanceRepo{t} }
func (t *tx) Skills() repository.SkillStore           { return skillRepo{t} }
func (t *tx) Messages() repository.MessageStore       { return messageRepo{t} }
func (t *tx) Payments() repository.PaymentStore       { return paymentRepo{t} }

func (t *tx) userExists(id uint64) bool {
	_, ok := t.st.users[id]
	return ok
}

func (t *tx) optionalUserExists(id *uint64) bool {
	return id == nil || t.userExists(*id)
}

func (t *tx) memberExists(id uint64) bool {
	_, ok := t.st.members[id]
	return ok
}

func (t *tx) scheduleExists(id uint64) bool {
	_, ok := t.st.schedules[id]
	return ok
}

func ptr[T any](v T) *T { return &v }
