package entity

import "time"

type AppointmentType string

const (
	AppointmentOnline   AppointmentType = "ONLINE"
	AppointmentInPerson AppointmentType = "IN_PERSON"
)

// Statuses are backend-defined; these are the ones the portal reacts to.
const (
	StatusConfirmed             = "CONFIRMED"
	StatusCancelled             = "CANCELLED"
	StatusCancellationRequested = "CANCELLATION_REQUESTED"
	StatusCompleted             = "COMPLETED"
)

// Appointment mirrors the remote API's appointment payload.
type Appointment struct {
	ID               string          `json:"id"`
	ClinicianName    string          `json:"clinician_name"`
	CentreName       string          `json:"centre_name"`
	AppointmentType  AppointmentType `json:"appointment_type"`
	ScheduledStartAt time.Time       `json:"scheduled_start_at"`
	ScheduledEndAt   time.Time       `json:"scheduled_end_at"`
	Status           string          `json:"status"`
	ConsultationFee  *float64        `json:"consultation_fee,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

// IsTerminal reports whether no further status change is expected.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusCompleted
}

// BookingDraft is the booking form as the patient fills it in.
type BookingDraft struct {
	Name       string `json:"name" validate:"required,min=2,max=80"`
	Contact    string `json:"contact" validate:"required,phoneprefix"`
	Email      string `json:"email" validate:"omitempty,email"`
	Location   string `json:"location" validate:"required,max=80"`
	Department string `json:"department" validate:"required,max=80"`
	Doctor     string `json:"doctor" validate:"required,max=80"`
	Date       string `json:"date" validate:"required,apidate"`
}
