package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type fixture struct {
	store    *Store
	parent   model.User
	member   model.Member
	schedule model.Schedule
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{store: NewStore()}
	err := f.store.InTx(ctx, func(tx repository.Tx) error {
		f.parent = model.User{Email: "p@example.com", FullName: "Ana", Role: model.RoleParent, IsActive: true}
		if err := tx.Users().Create(ctx, &f.parent); err != nil {
			return err
		}
		f.member = model.Member{ParentID: f.parent.ID, FullName: "Mila", DateOfBirth: model.NewDate(2016, 5, 1), Active: true}
		if err := tx.Members().Create(ctx, &f.member); err != nil {
			return err
		}
		f.schedule = model.Schedule{DayOfWeek: model.DayMonday, StartTime: "17:00", EndTime: "18:00", Capacity: 2, IsActive: true}
		return tx.Schedules().Create(ctx, &f.schedule)
	})
	require.NoError(t, err)
	return f
}

func TestInTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := f.store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.Members().SetActive(ctx, f.member.ID, false); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, f.store.View(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().Get(ctx, f.member.ID)
		require.NoError(t, err)
		assert.True(t, m.Active)
		return nil
	}))
}

func TestInTxHonoursCancelledContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := f.store.InTx(ctx, func(repository.Tx) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestUniqueEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	err := f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Users().Create(ctx, &model.User{Email: f.parent.Email, Role: model.RoleParent})
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestActiveEnrollmentUniqueness(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	start := model.NewDate(2024, 9, 2)

	var first model.Enrollment
	require.NoError(t, f.store.InTx(ctx, func(tx repository.Tx) error {
		first = model.Enrollment{MemberID: f.member.ID, ScheduleID: f.schedule.ID, StartDate: start, Active: true}
		return tx.Enrollments().Create(ctx, &first)
	}))

	err := f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Enrollments().Create(ctx, &model.Enrollment{MemberID: f.member.ID, ScheduleID: f.schedule.ID, StartDate: start, Active: true})
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// an ended enrollment does not block a new one
	require.NoError(t, f.store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.Enrollments().Deactivate(ctx, first.ID, start); err != nil {
			return err
		}
		return tx.Enrollments().Create(ctx, &model.Enrollment{MemberID: f.member.ID, ScheduleID: f.schedule.ID, StartDate: start, Active: true})
	}))

	err = f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Enrollments().Deactivate(ctx, first.ID, start)
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestForeignKeys(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	err := f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Members().Create(ctx, &model.Member{ParentID: 999, FullName: "x"})
	})
	assert.ErrorIs(t, err, repository.ErrLinkedData)

	err = f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Users().Delete(ctx, f.parent.ID)
	})
	assert.ErrorIs(t, err, repository.ErrLinkedData)

	require.NoError(t, f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Payments().Create(ctx, &model.Payment{MemberID: f.member.ID, Amount: 3000, Month: 9, Year: 2024})
	}))
	err = f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Members().Delete(ctx, f.member.ID)
	})
	assert.ErrorIs(t, err, repository.ErrLinkedData)

	err = f.store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Schedules().Delete(ctx, 12345)
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSerializedTransactions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.store.InTx(ctx, func(tx repository.Tx) error {
				n, err := tx.Payments().SumForMonth(ctx, 1, 2025)
				if err != nil {
					return err
				}
				// read-modify-write: lost updates would show as a smaller total
				return tx.Payments().Create(ctx, &model.Payment{MemberID: f.member.ID, Amount: n + 1, Month: 1, Year: 2025})
			})
		}()
	}
	wg.Wait()

	require.NoError(t, f.store.View(ctx, func(tx repository.Tx) error {
		latest, err := tx.Payments().Latest(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, latest, workers)
		sum, err := tx.Payments().SumForMonth(ctx, 1, 2025)
		require.NoError(t, err)
		// amounts are 1, 2, 4, ... doubling the running total each time
		assert.Equal(t, float64(1<<workers-1), sum)
		return nil
	}))
}

func TestInboxVisibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	clock := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	var owner, other model.User
	require.NoError(t, f.store.InTx(ctx, func(tx repository.Tx) error {
		owner = model.User{Email: "o@example.com", FullName: "Owner", Role: model.RoleOwner}
		other = model.User{Email: "x@example.com", FullName: "Other", Role: model.RoleParent}
		if err := tx.Users().Create(ctx, &owner); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, &other); err != nil {
			return err
		}
		msgs := []model.Message{
			{SenderID: owner.ID, Content: "all", Scope: model.ScopeBroadcastAll, SentAt: clock},
			{SenderID: owner.ID, Content: "staff", Scope: model.ScopeInternalStaff, SentAt: clock.Add(time.Minute)},
			{SenderID: owner.ID, Content: "group", Scope: model.ScopeGroupSchedule, TargetScheduleID: &f.schedule.ID, SentAt: clock.Add(2 * time.Minute)},
			{SenderID: owner.ID, Content: "dm", Scope: model.ScopeDirect, RecipientID: &f.parent.ID, SentAt: clock.Add(3 * time.Minute)},
			{SenderID: owner.ID, Content: "dm other", Scope: model.ScopeDirect, RecipientID: &other.ID, SentAt: clock.Add(4 * time.Minute)},
		}
		for i := range msgs {
			if err := tx.Messages().Create(ctx, &msgs[i]); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, f.store.View(ctx, func(tx repository.Tx) error {
		got, err := tx.Messages().Inbox(ctx, model.InboxFilter{
			UserID:      f.parent.ID,
			Scopes:      []string{model.ScopeBroadcastAll},
			ScheduleIDs: []uint64{f.schedule.ID},
		})
		require.NoError(t, err)
		var contents []string
		for _, m := range got {
			contents = append(contents, m.Content)
			assert.Equal(t, "Owner", m.SenderName)
		}
		assert.Equal(t, []string{"dm", "group", "all"}, contents)
		return nil
	}))
}
