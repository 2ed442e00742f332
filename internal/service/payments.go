package service

import (
	"context"
	"strings"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// HistoryLimit is how many payments History returns.
const HistoryLimit = 50

// PaymentService records membership fees.
type PaymentService struct {
	Deps
}

func NewPaymentService(d Deps) *PaymentService {
	return &PaymentService{Deps: mustDeps(d, "NewPaymentService")}
}

// PaymentInput is a payment to record. Zero PaymentDate means today and an
// empty Currency means RSD.
type PaymentInput struct {
	MemberID      uint64
	Amount        float64
	Currency      string
	PaymentDate   model.Date
	PaymentMethod string
	Month         int
	Year          int
	Notes         *string
}

func (in PaymentInput) validate() error {
	switch {
	case in.Amount <= 0:
		return InvalidInput("amount must be positive")
	case in.Month < 1 || in.Month > 12:
		return InvalidInput("month must be between 1 and 12")
	case in.Year < 2000 || in.Year > 2100:
		return InvalidInput("year is out of range")
	}
	switch in.PaymentMethod {
	case model.PaymentCash, model.PaymentBankTransfer:
		return nil
	}
	return InvalidInput("payment_method must be CASH or BANK_TRANSFER")
}

func (s *PaymentService) Create(ctx context.Context, id Identity, in PaymentInput) (model.Payment, error) {
	if !id.IsOwner() {
		return model.Payment{}, ErrForbidden
	}
	in.PaymentMethod = strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentCash
	}
	if err := in.validate(); err != nil {
		return model.Payment{}, err
	}
	if in.Currency == "" {
		in.Currency = model.DefaultCurrency
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = s.today()
	}

	var out model.Payment
	err := s.Store.InTx(ctx, func(tx repository.Tx) error {
		m, err := tx.Members().Get(ctx, in.MemberID)
		if err != nil {
			return fromStore(err, "member")
		}
		out = model.Payment{
			MemberID:      in.MemberID,
			Amount:        in.Amount,
			Currency:      strings.ToUpper(in.Currency),
			PaymentDate:   in.PaymentDate,
			PaymentMethod: in.PaymentMethod,
			Month:         in.Month,
			Year:          in.Year,
			Notes:         in.Notes,
			CreatedAt:     s.now().UTC(),
		}
		if err := tx.Payments().Create(ctx, &out); err != nil {
			return err
		}
		out.MemberName = m.FullName
		return nil
	})
	if err != nil {
		return model.Payment{}, fromStore(err, "payment")
	}
	s.publish(ctx, queue.TypePaymentRecorded, id.UserID, queue.PaymentRecorded{
		PaymentID: out.ID,
		MemberID:  out.MemberID,
		Amount:    out.Amount,
		Currency:  out.Currency,
		Month:     out.Month,
		Year:      out.Year,
	})
	return out, nil
}

// History returns the latest payments, newest first.
func (s *PaymentService) History(ctx context.Context, id Identity) ([]model.Payment, error) {
	if !id.IsOwner() {
		return nil, ErrForbidden
	}
	var out []model.Payment
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Payments().Latest(ctx, HistoryLimit)
		return err
	})
	return out, fromStore(err, "payment")
}
