package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
)

func TestNextStatus_LegalTransitions(t *testing.T) {
	tests := []struct {
		from  Status
		event Event
		want  Status
	}{
		{StatusPending, EventConfirm, StatusConfirmed},
		{StatusPending, EventUpdateItems, StatusPending},
		{StatusPending, EventCancel, StatusCancelled},
		{StatusPending, EventDelete, StatusPending},
		{StatusCancelled, EventDelete, StatusCancelled},
		{StatusConfirmed, EventShip, StatusShipping},
		{StatusConfirmed, EventConfirmPayment, StatusConfirmed},
		{StatusShipping, EventDeliver, StatusDelivered},
		{StatusShipping, EventReceive, StatusCompleted},
		{StatusShipping, EventConfirmPayment, StatusShipping},
		{StatusDelivered, EventReceive, StatusCompleted},
		{StatusDelivered, EventComplete, StatusCompleted},
		{StatusDelivered, EventConfirmPayment, StatusDelivered},
		{StatusCompleted, EventReceive, StatusCompleted},
		{StatusCompleted, EventConfirmPayment, StatusCompleted},
	}

	for _, tt := range tests {
		got, err := nextStatus(tt.from, tt.event)
		require.NoError(t, err, "%s from %s", tt.event, tt.from)
		assert.Equal(t, tt.want, got)
	}
}

func TestNextStatus_IllegalTransitions(t *testing.T) {
	tests := []struct {
		from  Status
		event Event
	}{
		{StatusPending, EventShip},
		{StatusPending, EventDeliver},
		{StatusPending, EventReceive},
		{StatusPending, EventConfirmPayment},
		{StatusConfirmed, EventConfirm},
		{StatusConfirmed, EventUpdateItems},
		{StatusConfirmed, EventDelete},
		{StatusConfirmed, EventCancel},
		{StatusShipping, EventShip},
		{StatusShipping, EventComplete},
		{StatusCompleted, EventShip},
		{StatusCompleted, EventDelete},
		{StatusCancelled, EventConfirm},
		{StatusCancelled, EventConfirmPayment},
	}

	for _, tt := range tests {
		_, err := nextStatus(tt.from, tt.event)
		require.Error(t, err, "%s from %s should be illegal", tt.event, tt.from)
		assert.True(t, apperror.IsInvalidState(err))

		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, string(tt.from), appErr.Details["currentStatus"])
		assert.NotEmpty(t, appErr.Details["requiredStatus"])
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusShipping.Terminal())
}
