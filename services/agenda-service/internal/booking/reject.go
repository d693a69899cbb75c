package booking

// Rejection reasons. Each maps to its own user-facing message; a booking
// never fails with a generic "unavailable".
const (
	ReasonPastTimeSlot        = "past_time_slot"
	ReasonSlotBlocked         = "slot_blocked"
	ReasonProfessionalOffDuty = "professional_off_duty"
	ReasonProfessionalOnBreak = "professional_on_break"
	ReasonSlotOccupied        = "slot_occupied"
)

// Rejection is a recoverable validation failure: the booking attempt stops
// and the message is shown to the user as-is.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return r.Reason + ": " + r.Message
}

func rejectPast() *Rejection {
	return &Rejection{Reason: ReasonPastTimeSlot, Message: "horário no passado"}
}

func rejectBlocked() *Rejection {
	return &Rejection{Reason: ReasonSlotBlocked, Message: "horário bloqueado"}
}

func rejectOffDuty() *Rejection {
	return &Rejection{Reason: ReasonProfessionalOffDuty, Message: "profissional de folga"}
}

func rejectOnBreak() *Rejection {
	return &Rejection{Reason: ReasonProfessionalOnBreak, Message: "profissional em pausa"}
}

func rejectOccupied() *Rejection {
	return &Rejection{Reason: ReasonSlotOccupied, Message: "horário já ocupado"}
}
