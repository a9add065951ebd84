package orders

import (
	"pointorder/internal/core/apperror"
)

// Event names one operation of the lifecycle service.
type Event string

const (
	EventUpdateItems    Event = "updateItems"
	EventConfirm        Event = "confirm"
	EventShip           Event = "ship"
	EventDeliver        Event = "deliver"
	EventReceive        Event = "receive"
	EventComplete       Event = "complete"
	EventConfirmPayment Event = "confirmPayment"
	EventCancel         Event = "cancel"
	EventDelete         Event = "delete"
)

// transition describes one row of the state machine: the statuses an event
// is legal from and the status it moves to. An empty target means the
// event leaves the status unchanged.
type transition struct {
	from []Status
	to   Status
}

// transitionTable is the single source of transition legality. Per-operation
// status checks are not scattered through the service; every operation asks
// this table, so illegal transitions are rejected uniformly.
var transitionTable = map[Event]transition{
	EventUpdateItems:    {from: []Status{StatusPending}},
	EventConfirm:        {from: []Status{StatusPending}, to: StatusConfirmed},
	EventShip:           {from: []Status{StatusConfirmed}, to: StatusShipping},
	EventDeliver:        {from: []Status{StatusShipping}, to: StatusDelivered},
	EventReceive:        {from: []Status{StatusShipping, StatusDelivered, StatusCompleted}, to: StatusCompleted},
	EventComplete:       {from: []Status{StatusDelivered}, to: StatusCompleted},
	EventConfirmPayment: {from: []Status{StatusConfirmed, StatusShipping, StatusDelivered, StatusCompleted}},
	EventCancel:         {from: []Status{StatusPending}, to: StatusCancelled},
	EventDelete:         {from: []Status{StatusPending, StatusCancelled}},
}

// nextStatus evaluates the transition table for (current, event).
// On success it returns the target status (current when the event does not
// move the order). A guard failure names both the current and the required
// statuses and implies zero side effects.
func nextStatus(current Status, event Event) (Status, error) {
	t, ok := transitionTable[event]
	if !ok {
		return current, apperror.NewInternal(nil).
			WithDetail("event", string(event))
	}

	for _, from := range t.from {
		if from == current {
			if t.to == "" {
				return current, nil
			}
			return t.to, nil
		}
	}

	required := make([]string, len(t.from))
	for i, from := range t.from {
		required[i] = string(from)
	}
	return current, apperror.NewInvalidState(string(current), required...).
		WithDetail("event", string(event))
}
