package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/queue"
)

func TestPayments(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner := e.user(model.RoleOwner, "Owner")
	parent := e.user(model.RoleParent, "Ana")
	m := e.member(parent, "Mila")
	svc := NewPaymentService(e.deps)

	_, err := svc.Create(e.ctx, parent, PaymentInput{MemberID: m.ID, Amount: 3000, Month: 9, Year: 2024})
	assert.ErrorIs(t, err, ErrForbidden)

	bad := []PaymentInput{
		{MemberID: m.ID, Amount: 0, Month: 9, Year: 2024},
		{MemberID: m.ID, Amount: 3000, Month: 13, Year: 2024},
		{MemberID: m.ID, Amount: 3000, Month: 9, Year: 1999},
		{MemberID: m.ID, Amount: 3000, Month: 9, Year: 2024, PaymentMethod: "CARD"},
	}
	for _, in := range bad {
		_, err := svc.Create(e.ctx, owner, in)
		assert.Equal(t, KindInvalidInput, KindOf(err), "%+v", in)
	}
	_, err = svc.Create(e.ctx, owner, PaymentInput{MemberID: 999, Amount: 3000, Month: 9, Year: 2024})
	assert.ErrorIs(t, err, NotFound("member"))

	p, err := svc.Create(e.ctx, owner, PaymentInput{MemberID: m.ID, Amount: 3000, Month: 9, Year: 2024, PaymentMethod: "bank_transfer"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCurrency, p.Currency)
	assert.Equal(t, model.PaymentBankTransfer, p.PaymentMethod)
	assert.Equal(t, "2024-09-02", p.PaymentDate.String())
	assert.Equal(t, "Mila", p.MemberName)
	assert.Equal(t, []string{queue.TypePaymentRecorded}, e.events.types())

	_, err = svc.History(e.ctx, parent)
	assert.ErrorIs(t, err, ErrForbidden)
	hist, err := svc.History(e.ctx, owner)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, p.ID, hist[0].ID)
}
