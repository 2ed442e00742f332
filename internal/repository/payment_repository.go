package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/swim-club-backend/internal/model"
)

// PaymentRepo persists membership fee payments and answers the revenue
// queries used by reporting.
type PaymentRepo struct{ q DBTX }

func NewPaymentRepo(q DBTX) *PaymentRepo { return &PaymentRepo{q: q} }

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO payments (member_id, amount, currency, payment_date, payment_method, month, year, notes, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.MemberID, p.Amount, p.Currency, p.PaymentDate, p.PaymentMethod, p.Month, p.Year,
		nullString(p.Notes), p.CreatedAt)
	if err != nil {
		return translate(err)
	}
	p.ID, err = insertID(res)
	return err
}

func (r *PaymentRepo) Latest(ctx context.Context, limit int) ([]model.Payment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT p.id, p.member_id, COALESCE(m.full_name, ''), p.amount, p.currency, p.payment_date,
		       p.payment_method, p.month, p.year, p.notes, p.created_at
		FROM payments p
		LEFT JOIN members m ON m.id = p.member_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Payment{}
	for rows.Next() {
		var (
			p     model.Payment
			notes sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.MemberID, &p.MemberName, &p.Amount, &p.Currency, &p.PaymentDate,
			&p.PaymentMethod, &p.Month, &p.Year, &notes, &p.CreatedAt); err != nil {
			return nil, translate(err)
		}
		p.Notes = stringPtr(notes)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) SumForMonth(ctx context.Context, month, year int) (float64, error) {
	var sum float64
	err := r.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE month=? AND year=?", month, year).Scan(&sum)
	return sum, translate(err)
}

func (r *PaymentRepo) MonthlyTotals(ctx context.Context, year int) ([]model.MonthlyRevenue, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT month, COALESCE(SUM(amount), 0), COUNT(*)
		FROM payments
		WHERE year=?
		GROUP BY month
		ORDER BY month`, year)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.MonthlyRevenue{}
	for rows.Next() {
		var m model.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.TotalRevenue, &m.PaymentCount); err != nil {
			return nil, translate(err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Debtors lists active members with no payment recorded for month/year.
func (r *PaymentRepo) Debtors(ctx context.Context, month, year int) ([]model.Debtor, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT m.id, m.full_name, u.full_name, u.phone_number
		FROM members m
		LEFT JOIN users u ON u.id = m.parent_id
		WHERE m.active = 1
		  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.member_id = m.id AND p.month = ? AND p.year = ?)
		ORDER BY m.full_name, m.id`, month, year)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	out := []model.Debtor{}
	for rows.Next() {
		var (
			d           model.Debtor
			name, phone sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.FullName, &name, &phone); err != nil {
			return nil, translate(err)
		}
		d.ParentName = stringPtr(name)
		d.ParentPhone = stringPtr(phone)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) HasPayment(ctx context.Context, memberID uint64, month, year int) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM payments WHERE member_id=? AND month=? AND year=?)",
		memberID, month, year).Scan(&ok)
	return ok, translate(err)
}
