package service

import (
	"context"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// monthNames are the Serbian (Latin) month names shown to parents.
var monthNames = [13]string{"", "Januar", "Februar", "Mart", "April", "Maj", "Jun",
	"Jul", "Avgust", "Septembar", "Oktobar", "Novembar", "Decembar"}

// MonthName returns the Serbian name of month m (1-12), or "" otherwise.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m]
}

// ReportingService computes dashboard figures. Nothing it returns is
// stored; every call aggregates live data.
type ReportingService struct {
	Deps
}

func NewReportingService(d Deps) *ReportingService {
	return &ReportingService{Deps: mustDeps(d, "NewReportingService")}
}

// DashboardStats returns active members, today's present count and this
// month's revenue.
func (s *ReportingService) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	today := s.today()
	var out model.DashboardStats
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		if out.ActiveMembers, err = tx.Members().CountActive(ctx); err != nil {
			return err
		}
		if out.AttendanceToday, err = tx.Attendance().CountPresentOn(ctx, today); err != nil {
			return err
		}
		out.RevenueMonth, err = tx.Payments().SumForMonth(ctx, int(today.Month()), today.Year())
		return err
	})
	return out, fromStore(err, "dashboard")
}

// TodaySchedules lists today's active classes with enrolled and present
// counts, flagging sessions cancelled for today.
func (s *ReportingService) TodaySchedules(ctx context.Context) ([]model.TodaySchedule, error) {
	today := s.today()
	var out []model.TodaySchedule
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		schedules, err := tx.Schedules().ListActiveByDay(ctx, model.DayCode(today.Weekday()))
		if err != nil {
			return err
		}
		out = make([]model.TodaySchedule, 0, len(schedules))
		for _, sc := range schedules {
			enrolled, err := tx.Enrollments().CountActiveBySchedule(ctx, sc.ID)
			if err != nil {
				return err
			}
			presentCount, err := tx.Attendance().CountPresentBySchedule(ctx, sc.ID, today)
			if err != nil {
				return err
			}
			cancelled, err := tx.Schedules().IsCancelled(ctx, sc.ID, today)
			if err != nil {
				return err
			}
			loc := ""
			if sc.Location != nil {
				loc = *sc.Location
			}
			out = append(out, model.TodaySchedule{
				ScheduleID:    sc.ID,
				GroupName:     sc.DisplayName(),
				Time:          sc.TimeRange(),
				Location:      loc,
				EnrolledCount: enrolled,
				PresentCount:  presentCount,
				Cancelled:     cancelled,
			})
		}
		return nil
	})
	return out, fromStore(err, "schedule")
}

// YearlySummary returns exactly twelve entries, zero-filled for months
// without payments.
func (s *ReportingService) YearlySummary(ctx context.Context, id Identity, year int) ([]model.MonthlyRevenue, error) {
	if !id.IsOwner() {
		return nil, ErrForbidden
	}
	if year == 0 {
		year = s.today().Year()
	}
	var totals []model.MonthlyRevenue
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		totals, err = tx.Payments().MonthlyTotals(ctx, year)
		return err
	})
	if err != nil {
		return nil, fromStore(err, "payment")
	}
	out := make([]model.MonthlyRevenue, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, t := range totals {
		if t.Month >= 1 && t.Month <= 12 {
			out[t.Month-1] = t
		}
	}
	return out, nil
}

// Debtors lists active members with no payment for month/year, defaulting
// to the current month.
func (s *ReportingService) Debtors(ctx context.Context, id Identity, month, year int) ([]model.Debtor, error) {
	if !id.IsOwner() {
		return nil, ErrForbidden
	}
	today := s.today()
	if month == 0 {
		month = int(today.Month())
	}
	if year == 0 {
		year = today.Year()
	}
	if month < 1 || month > 12 {
		return nil, InvalidInput("month must be between 1 and 12")
	}
	var out []model.Debtor
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Payments().Debtors(ctx, month, year)
		return err
	})
	return out, fromStore(err, "payment")
}

// PaymentStatus tells the owner or the member's parent whether the current
// month is paid.
func (s *ReportingService) PaymentStatus(ctx context.Context, id Identity, memberID uint64) (model.PaymentStatus, error) {
	today := s.today()
	var out model.PaymentStatus
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().Get(ctx, memberID)
		if err != nil {
			return fromStore(err, "member")
		}
		if !id.IsOwner() && !id.owns(m) {
			return ErrForbidden
		}
		paid, err := tx.Payments().HasPayment(ctx, memberID, int(today.Month()), today.Year())
		if err != nil {
			return err
		}
		out = model.PaymentStatus{IsPaid: paid, MonthName: MonthName(int(today.Month()))}
		return nil
	})
	return out, fromStore(err, "member")
}

