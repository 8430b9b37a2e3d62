package bookings

// ReserveRequest is the reservation call payload.
type ReserveRequest struct {
	SpaceID          string `json:"space_id" binding:"required,uuid"`
	Date             string `json:"date" binding:"required,bookingdate"`
	StartTime        string `json:"start_time" binding:"required,slottime"`
	EndTime          string `json:"end_time" binding:"required,slottime"`
	ConfirmationType string `json:"confirmation_type" binding:"omitempty,oneof=INSTANT HOST_APPROVAL"`
}

// CancelRequest carries an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// DecisionRequest is the host approve/reject payload.
type DecisionRequest struct {
	Approve bool `json:"approve"`
}
