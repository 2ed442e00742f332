package service

import (
	"context"
	"errors"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// EnrollmentService places members into weekly slots.
//
// Enroll and CancelEnrollment lock the member row and then the schedule row
// before counting, always in that order. Two requests touching the same
// member or the same schedule therefore run one after the other, and the
// capacity and slot limits hold under concurrency.
type EnrollmentService struct {
	Deps
}

func NewEnrollmentService(d Deps) *EnrollmentService {
	return &EnrollmentService{Deps: mustDeps(d, "NewEnrollmentService")}
}

// EnrollInput is the body of an enrollment request.
type EnrollInput struct {
	MemberID   uint64
	ScheduleID uint64
	StartDate  model.Date
}

// Enroll checks, in order: the member exists, the caller may act for it,
// the schedule exists and is open, the schedule has room, the member holds
// fewer than two slots, and the member is not already in this slot. The
// first failing check decides the error.
func (s *EnrollmentService) Enroll(ctx context.Context, id Identity, in EnrollInput) (model.Enrollment, error) {
	if in.StartDate.IsZero() {
		return model.Enrollment{}, InvalidInput("start_date is required")
	}
	var out model.Enrollment
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().GetForUpdate(ctx, in.MemberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsOwner() && !id.owns(m) {
			return ErrForbidden
		}
		sched, err := tx.Schedules().GetForUpdate(ctx, in.ScheduleID)
		if err != nil {
			return fromStore(err, "schedule")
		}
		if !sched.IsActive {
			return InvalidState("schedule closed")
		}

		enrollments := tx.Enrollments()
		taken, err := enrollments.CountActiveBySchedule(ctx, sched.ID)
		if err != nil {
			return fromStore(err, "schedule")
		}
		if taken >= sched.Capacity {
			return ErrCapacityExceeded
		}
		held, err := enrollments.CountActiveByMember(ctx, m.ID)
		if err != nil {
			return fromStore(err, "member")
		}
		if held >= model.MaxActiveEnrollmentsPerMember {
			return ErrSlotLimitExceeded
		}
		dup, err := enrollments.ActiveExists(ctx, m.ID, sched.ID)
		if err != nil {
			return fromStore(err, "enrollment")
		}
		if dup {
			return ErrDuplicateEnrollment
		}

		out = model.Enrollment{MemberID: m.ID, ScheduleID: sched.ID, StartDate: in.StartDate, Active: true}
		if err := enrollments.Create(ctx, &out); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateEnrollment
			}
			return fromStore(err, "enrollment")
		}
		return nil
	})
	if err != nil {
		return model.Enrollment{}, fromStore(err, "enrollment")
	}
	s.publish(ctx, queue.TypeEnrollmentCreated, id.UserID, queue.EnrollmentCreated{
		EnrollmentID: out.ID,
		MemberID:     out.MemberID,
		ScheduleID:   out.ScheduleID,
		StartDate:    out.StartDate.String(),
	})
	return out, nil
}

// CancelEnrollment ends an active enrollment. endDate defaults to today and
// may not precede the start date.
func (s *EnrollmentService) CancelEnrollment(ctx context.Context, id Identity, enrollmentID uint64, endDate *model.Date) (model.Enrollment, error) {
	end := s.today()
	if endDate != nil && !endDate.IsZero() {
		end = *endDate
	}
	var out model.Enrollment
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		e, err := tx.Enrollments().Get(ctx, enrollmentID)
		if err != nil {
			return fromStore(err, "enrollment")
		}
		m, err := tx.Members().GetForUpdate(ctx, e.MemberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsOwner() && !id.owns(m) {
			return ErrForbidden
		}
		if _, err := tx.Schedules().GetForUpdate(ctx, e.ScheduleID); err != nil {
			return fromStore(err, "schedule")
		}
		// re-read under the locks
		if e, err = tx.Enrollments().Get(ctx, enrollmentID); err != nil {
			return fromStore(err, "enrollment")
		}
		if !e.Active {
			return InvalidState("enrollment already inactive")
		}
		if end.Before(e.StartDate) {
			return InvalidInput("end_date must not be before start_date")
		}
		if err := tx.Enrollments().Deactivate(ctx, e.ID, end); err != nil {
			return fromStore(err, "enrollment")
		}
		e.Active = false
		e.EndDate = &end
		out = e
		return nil
	})
	if err != nil {
		return model.Enrollment{}, fromStore(err, "enrollment")
	}
	s.publish(ctx, queue.TypeEnrollmentCancelled, id.UserID, queue.EnrollmentCancelled{
		EnrollmentID: out.ID,
		MemberID:     out.MemberID,
		ScheduleID:   out.ScheduleID,
		EndDate:      end.String(),
	})
	return out, nil
}

// ListMemberEnrollments returns the member's active enrollments with their
// schedules. Staff see every member, parents only their own children.
func (s *EnrollmentService) ListMemberEnrollments(ctx context.Context, id Identity, memberID uint64) ([]model.EnrollmentDetail, error) {
	var out []model.EnrollmentDetail
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().Get(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsStaff() && !id.owns(m) {
			return ErrForbidden
		}
		out, err = tx.Enrollments().ListActiveByMember(ctx, memberID)
		return err
	})
	return out, fromStore(err, "member")
}

// ListSchedules returns schedules with their live active enrollment count.
func (s *EnrollmentService) ListSchedules(ctx context.Context, activeOnly bool) ([]model.ScheduleWithCount, error) {
	var out []model.ScheduleWithCount
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		schedules, err := tx.Schedules().List(ctx, activeOnly)
		if err != nil {
			return err
		}
		counts, err := tx.Enrollments().ActiveCounts(ctx)
		if err != nil {
			return err
		}
		out = make([]model.ScheduleWithCount, 0, len(schedules))
		for _, sc := range schedules {
			out = append(out, model.ScheduleWithCount{Schedule: sc, CurrentEnrollmentsCount: counts[sc.ID]})
		}
		return nil
	})
	return out, fromStore(err, "schedule")
}
