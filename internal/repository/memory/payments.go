package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

type paymentRepo struct{ t *tx }

func (r paymentRepo) Create(_ context.Context, p *model.Payment) error {
	if !r.t.memberExists(p.MemberID) {
		return repository.ErrLinkedData
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.t.now().UTC()
	}
	p.ID = r.t.st.nextID()
	stored := *p
	stored.MemberName = ""
	r.t.st.payments[p.ID] = stored
	return nil
}

func (r paymentRepo) Latest(_ context.Context, limit int) ([]model.Payment, error) {
	out := make([]model.Payment, 0, len(r.t.st.payments))
	for _, p := range r.t.st.payments {
		if m, ok := r.t.st.members[p.MemberID]; ok {
			p.MemberName = m.FullName
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r paymentRepo) SumForMonth(_ context.Context, month, year int) (float64, error) {
	var sum float64
	for _, p := range r.t.st.payments {
		if p.Month == month && p.Year == year {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (r paymentRepo) MonthlyTotals(_ context.Context, year int) ([]model.MonthlyRevenue, error) {
	byMonth := map[int]*model.MonthlyRevenue{}
	for _, p := range r.t.st.payments {
		if p.Year != year {
			continue
		}
		mr, ok := byMonth[p.Month]
		if !ok {
			mr = &model.MonthlyRevenue{Month: p.Month}
			byMonth[p.Month] = mr
		}
		mr.TotalRevenue += p.Amount
		mr.PaymentCount++
	}
	out := make([]model.MonthlyRevenue, 0, len(byMonth))
	for _, mr := range byMonth {
		out = append(out, *mr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r paymentRepo) Debtors(ctx context.Context, month, year int) ([]model.Debtor, error) {
	active := []model.Member{}
	for _, m := range r.t.st.members {
		if !m.Active {
			continue
		}
		paid, _ := r.HasPayment(ctx, m.ID, month, year)
		if !paid {
			active = append(active, m)
		}
	}
	sortMembers(active)
	out := make([]model.Debtor, 0, len(active))
	for _, m := range active {
		d := model.Debtor{ID: m.ID, FullName: m.FullName}
		if p, ok := r.t.st.users[m.ParentID]; ok {
			d.ParentName = ptr(p.FullName)
			d.ParentPhone = p.PhoneNumber
		}
		out = append(out, d)
	}
	return out, nil
}

func (r paymentRepo) HasPayment(_ context.Context, memberID uint64, month, year int) (bool, error) {
	for _, p := range r.t.st.payments {
		if p.MemberID == memberID && p.Month == month && p.Year == year {
			return true, nil
		}
	}
	return false, nil
}
