package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luciagrant/mercadito-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPendingConfirmation, enums.OrderStatusPendingPayment},
		{enums.OrderStatusPendingConfirmation, enums.OrderStatusCanceled},
		{enums.OrderStatusPendingPayment, enums.OrderStatusPaid},
		{enums.OrderStatusPendingPayment, enums.OrderStatusCanceled},
		{enums.OrderStatusPaid, enums.OrderStatusProcessing},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPendingConfirmation, enums.OrderStatusShipped},
		{enums.OrderStatusPendingConfirmation, enums.OrderStatusPaid},
		{enums.OrderStatusPaid, enums.OrderStatusCanceled},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped},
		{enums.OrderStatusCanceled, enums.OrderStatusPendingPayment},
		{enums.OrderStatusShipped, enums.OrderStatusProcessing},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsCancelable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCancelable(enums.OrderStatusPendingConfirmation))
	assert.True(t, IsCancelable(enums.OrderStatusPendingPayment))
	assert.False(t, IsCancelable(enums.OrderStatusPaid))
	assert.False(t, IsCancelable(enums.OrderStatusShipped))
	assert.False(t, IsCancelable(enums.OrderStatusCanceled))
}

func TestRequiresPayment(t *testing.T) {
	t.Parallel()

	assert.True(t, RequiresPayment(enums.OrderStatusProcessing))
	assert.True(t, RequiresPayment(enums.OrderStatusShipped))
	assert.True(t, RequiresPayment(enums.OrderStatusDelivered))
	assert.False(t, RequiresPayment(enums.OrderStatusPendingPayment))
	assert.False(t, RequiresPayment(enums.OrderStatusCanceled))
}
