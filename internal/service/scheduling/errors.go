package scheduling

// Rejection messages are part of the external API contract and must not be
// reworded.
const (
	MsgPatientNotFound  = "Patient not found"
	MsgProviderNotFound = "Provider not found"
	MsgBookingWindow    = "Appointment begin before booking window starts"
	MsgMaxDuration      = "Appointment length exceeds maximum allowed"
	MsgStartConflict    = "New appointment starts before already booked appointment ends."
	MsgEndConflict      = "New appointment ends after already booked appointment starts."
	MsgModifyPast       = "Cannot modify appointments in the past"
	MsgOfficeClosed     = "Office closed"
)
