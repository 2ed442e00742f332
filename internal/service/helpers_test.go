package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
	"github.com/iliyamo/swim-club-backend/internal/repository/memory"
)

// monday is a fixed "now": Monday 2 September 2024, 10:00 UTC.
var monday = time.Date(2024, time.September, 2, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	events *recordingPublisher
	deps   Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := func() time.Time { return monday }
	store := memory.NewStore(memory.WithClock(clock))
	pub := &recordingPublisher{}
	return &env{
		t:      t,
		ctx:    context.Background(),
		store:  store,
		events: pub,
		deps:   Deps{Store: store, Events: pub, Now: clock, Location: time.UTC},
	}
}

func (e *env) tx(fn func(tx repository.Tx) error) {
	e.t.Helper()
	require.NoError(e.t, e.store.InTx(e.ctx, fn))
}

var emailSeq struct {
	sync.Mutex
	n int
}

func (e *env) user(role, name string) Identity {
	e.t.Helper()
	emailSeq.Lock()
	emailSeq.n++
	n := emailSeq.n
	emailSeq.Unlock()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(e.t, err)
	phone := "+381601234567"
	u := model.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: string(hash),
		FullName:     name,
		Role:         role,
		PhoneNumber:  &phone,
		IsActive:     true,
	}
	e.tx(func(tx repository.Tx) error { return tx.Users().Create(e.ctx, &u) })
	return Identity{UserID: u.ID, Role: role}
}

func (e *env) member(parent Identity, name string) model.Member {
	e.t.Helper()
	notes := "astma"
	m := model.Member{ParentID: parent.UserID, FullName: name, DateOfBirth: model.NewDate(2016, 4, 12), Notes: &notes, Active: true}
	e.tx(func(tx repository.Tx) error { return tx.Members().Create(e.ctx, &m) })
	return m
}

func (e *env) schedule(day string, capacity int, active bool) model.Schedule {
	e.t.Helper()
	s := model.Schedule{DayOfWeek: day, StartTime: "17:00", EndTime: "18:00", Capacity: capacity, IsActive: active}
	e.tx(func(tx repository.Tx) error { return tx.Schedules().Create(e.ctx, &s) })
	return s
}

func (e *env) enroll(m model.Member, s model.Schedule) model.Enrollment {
	e.t.Helper()
	en := model.Enrollment{MemberID: m.ID, ScheduleID: s.ID, StartDate: model.DateOf(monday), Active: true}
	e.tx(func(tx repository.Tx) error { return tx.Enrollments().Create(e.ctx, &en) })
	return en
}

func (e *env) pay(m model.Member, amount float64, month, year int) {
	e.t.Helper()
	p := model.Payment{MemberID: m.ID, Amount: amount, Currency: "RSD", PaymentDate: model.DateOf(monday), PaymentMethod: model.PaymentCash, Month: month, Year: year}
	e.tx(func(tx repository.Tx) error { return tx.Payments().Create(e.ctx, &p) })
}
