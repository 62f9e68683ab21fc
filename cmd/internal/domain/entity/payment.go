package entity

const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
)

type PaymentStatus struct {
	Status    string `json:"status"`
	PaymentID string `json:"paymentId"`
}

// IsPaid is the only terminal payment status.
func (p *PaymentStatus) IsPaid() bool {
	return p != nil && p.Status == PaymentPaid
}

type PaymentLink struct {
	AppointmentID string `json:"appointmentId"`
	PaymentID     string `json:"paymentId,omitempty"`
	ShortURL      string `json:"shortUrl,omitempty"`
}

type Payment struct {
	ID            string  `json:"id"`
	AppointmentID string  `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

type VideoLink struct {
	AppointmentID string `json:"appointmentId"`
	MeetLink      string `json:"meetLink"`
}
