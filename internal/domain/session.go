package domain

import "time"

// SessionState represents the stage a booking session has reached.
type SessionState string

const (
	SessionStateEmpty           SessionState = "EMPTY"
	SessionStateVehicleChosen   SessionState = "VEHICLE_CHOSEN"
	SessionStateDetailsCaptured SessionState = "DETAILS_CAPTURED"
	SessionStatePaymentChosen   SessionState = "PAYMENT_CHOSEN"
	SessionStateConfirmed       SessionState = "CONFIRMED"
)

// AllowedTransitions is the booking flow as data. Reset to EMPTY is allowed
// from every state and is not listed.
var AllowedTransitions = map[SessionState][]SessionState{
	SessionStateEmpty:           {SessionStateVehicleChosen},
	SessionStateVehicleChosen:   {SessionStateVehicleChosen, SessionStateDetailsCaptured},
	SessionStateDetailsCaptured: {SessionStateVehicleChosen, SessionStateDetailsCaptured, SessionStatePaymentChosen},
	SessionStatePaymentChosen:   {SessionStateVehicleChosen, SessionStateDetailsCaptured, SessionStatePaymentChosen, SessionStateConfirmed},
	SessionStateConfirmed:       {SessionStateVehicleChosen},
}

// CanTransition reports whether the flow allows moving from one state to another.
func CanTransition(from, to SessionState) bool {
	if to == SessionStateEmpty {
		return true
	}
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is the booking record accumulated across the flow. Each stage's
// record is nil until that stage has been completed.
type Session struct {
	ID            string               `json:"id"`
	State         SessionState         `json:"state"`
	Draft         *BookingDraft        `json:"draft,omitempty"`
	Customer      *CustomerDetails     `json:"customer,omitempty"`
	PaymentMethod PaymentMethod        `json:"payment_method,omitempty"`
	Confirmation  *BookingConfirmation `json:"confirmation,omitempty"`
	Processing    bool                 `json:"processing"`
	Version       int                  `json:"version"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Clear discards every accumulated record and returns the session to EMPTY.
func (s *Session) Clear() {
	s.State = SessionStateEmpty
	s.Draft = nil
	s.Customer = nil
	s.PaymentMethod = ""
	s.Confirmation = nil
	s.Processing = false
}
