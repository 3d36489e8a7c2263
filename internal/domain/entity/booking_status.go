package entity

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no-show"
)

// bookingTransitions is the complete edge set of the lifecycle.
// Statuses without an entry are terminal. Confirmed has no incoming edge.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusAccepted, BookingStatusDeclined, BookingStatusCancelled},
	BookingStatusAccepted: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

// BookingStatuses lists every storable status.
func BookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusAccepted,
		BookingStatusDeclined,
		BookingStatusConfirmed,
		BookingStatusCompleted,
		BookingStatusCancelled,
		BookingStatusNoShow,
	}
}

// IsValid reports whether s is a known status.
func (s BookingStatus) IsValid() bool {
	for _, known := range BookingStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether s -> next is an edge of the lifecycle.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// IsDeletable reports whether a booking in status s may be removed.
func (s BookingStatus) IsDeletable() bool {
	return s == BookingStatusPending || s == BookingStatusCancelled
}

// DeletableStatuses lists the statuses IsDeletable accepts.
func DeletableStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusCancelled}
}

// RequestedTime is the customer's desired time window.
type RequestedTime string

const (
	RequestedTimeASAP     RequestedTime = "ASAP"
	RequestedTimeToday    RequestedTime = "Today"
	RequestedTimeTomorrow RequestedTime = "Tomorrow"
	RequestedTimeThisWeek RequestedTime = "This Week"
	RequestedTimeCustom   RequestedTime = "Custom"
)

// PaymentStatus is tracked separately from BookingStatus.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusFailed     PaymentStatus = "failed"
)
