package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// DefaultCapacity applies when a schedule is created without one.
const DefaultCapacity = 10

// ScheduleService administers weekly slots and one-off session
// cancellations.
type ScheduleService struct {
	Deps
}

func NewScheduleService(d Deps) *ScheduleService {
	return &ScheduleService{Deps: mustDeps(d, "NewScheduleService")}
}

// ScheduleInput is the writable part of a schedule.
type ScheduleInput struct {
	DayOfWeek string
	StartTime string
	EndTime   string
	CoachID   *uint64
	Capacity  int
	GroupName *string
	Location  *string
	IsActive  *bool
}

// build validates in and turns it into a schedule. The coach, when set,
// must be a COACH account.
func (in ScheduleInput) build(ctx context.Context, tx repository.Tx) (model.Schedule, error) {
	day := strings.ToUpper(strings.TrimSpace(in.DayOfWeek))
	if !model.ValidDayCode(day) {
		return model.Schedule{}, InvalidInput("day_of_week must be one of PON, UTO, SRE, CET, PET, SUB, NED")
	}
	start, err := model.NormalizeClock(in.StartTime)
	if err != nil {
		return model.Schedule{}, InvalidInput("start_time: " + err.Error())
	}
	end, err := model.NormalizeClock(in.EndTime)
	if err != nil {
		return model.Schedule{}, InvalidInput("end_time: " + err.Error())
	}
	if start >= end {
		return model.Schedule{}, InvalidInput("start_time must be before end_time")
	}
	capacity := in.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < 0 {
		return model.Schedule{}, InvalidInput("capacity must be positive")
	}
	if in.CoachID != nil {
		coach, err := tx.Users().GetByID(ctx, *in.CoachID)
		if err != nil {
			return model.Schedule{}, fromStore(err, "coach")
		}
		if coach.Role != model.RoleCoach {
			return model.Schedule{}, InvalidInput("coach_id must reference a coach")
		}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return model.Schedule{
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		CoachID:   in.CoachID,
		Capacity:  capacity,
		GroupName: in.GroupName,
		Location:  in.Location,
		IsActive:  active,
	}, nil
}

func (s *ScheduleService) CreateSchedule(ctx context.Context, id Identity, in ScheduleInput) (model.Schedule, error) {
	if !id.IsOwner() {
		return model.Schedule{}, ErrForbidden
	}
	var out model.Schedule
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		sc, err := in.build(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.Schedules().Create(ctx, &sc); err != nil {
			return err
		}
		out = sc
		return nil
	})
	return out, fromStore(err, "schedule")
}

// UpdateSchedule replaces every writable field. Lowering the capacity below
// the current head count keeps existing enrollments and refuses new ones.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id Identity, scheduleID uint64, in ScheduleInput) (model.Schedule, error) {
	if !id.IsOwner() {
		return model.Schedule{}, ErrForbidden
	}
	var out model.Schedule
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Schedules().GetForUpdate(ctx, scheduleID); err != nil {
			return fromStore(err, "schedule")
		}
		sc, err := in.build(ctx, tx)
		if err != nil {
			return err
		}
		sc.ID = scheduleID
		if err := tx.Schedules().Update(ctx, sc); err != nil {
			return err
		}
		out = sc
		return nil
	})
	return out, fromStore(err, "schedule")
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, id Identity, scheduleID uint64) error {
	if !id.IsOwner() {
		return ErrForbidden
	}
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		return tx.Schedules().Delete(ctx, scheduleID)
	})
	return fromStore(err, "schedule")
}

// CancelSession marks the schedule's session on date as not taking place.
func (s *ScheduleService) CancelSession(ctx context.Context, id Identity, scheduleID uint64, date model.Date, reason *string) (model.ScheduleCancellation, error) {
	if !id.IsStaff() {
		return model.ScheduleCancellation{}, ErrForbidden
	}
	if date.IsZero() {
		return model.ScheduleCancellation{}, InvalidInput("cancel_date is required")
	}
	var out model.ScheduleCancellation
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Schedules().Get(ctx, scheduleID); err != nil {
			return fromStore(err, "schedule")
		}
		c := model.ScheduleCancellation{ScheduleID: scheduleID, CancelDate: date, Reason: reason}
		if err := tx.Schedules().AddCancellation(ctx, &c); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return InvalidState("session already cancelled")
			}
			return err
		}
		out = c
		return nil
	})
	return out, fromStore(err, "schedule")
}

func (s *ScheduleService) ListCancellations(ctx context.Context, scheduleID uint64) ([]model.ScheduleCancellation, error) {
	var out []model.ScheduleCancellation
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		if _, err := tx.Schedules().Get(ctx, scheduleID); err != nil {
			return err
		}
		var err error
		out, err = tx.Schedules().ListCancellations(ctx, scheduleID)
		return err
	})
	return out, fromStore(err, "schedule")
}

// RequestSchedule forwards a free-text request for a new slot to the club
// as a schedule.requested event.
func (s *ScheduleService) RequestSchedule(ctx context.Context, id Identity, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return InvalidInput("message is required")
	}
	s.publish(ctx, queue.TypeScheduleRequested, id.UserID, queue.ScheduleRequested{UserID: id.UserID, Message: message})
	return nil
}
