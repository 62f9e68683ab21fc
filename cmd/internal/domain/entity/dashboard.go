package entity

type Dashboard struct {
	Patient              *UserProfile   `json:"patient"`
	UpcomingAppointments []*Appointment `json:"upcoming_appointments"`
	RecentPayments       []*Payment     `json:"recent_payments"`
	TotalAppointments    int            `json:"total_appointments"`
}
