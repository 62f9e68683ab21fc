package entity

// Keys of the local persistent storage.
const (
	KeyLatestBooking = "latestBooking"
	KeyUser          = "mibo_user"
	KeyAccessToken   = "mibo_access_token"
	KeyRefreshToken  = "mibo_refresh_token"
)

// StorageEntry is one key of the local key-value store. Value is opaque
// to the repository; typed readers decode and validate it.
type StorageEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey"`
	Value     string `gorm:"not null"`
	Version   int    `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null"`
}

const (
	BookingSummaryVersion = 1
	ProfileRecordVersion  = 1
)

// BookingSummary is written once a booking is paid so the dashboard can
// show it before the backend list catches up.
type BookingSummary struct {
	Version         int             `json:"version" validate:"eq=1"`
	AppointmentID   string          `json:"appointment_id" validate:"required"`
	ClinicianName   string          `json:"clinician_name"`
	CentreName      string          `json:"centre_name"`
	AppointmentType AppointmentType `json:"appointment_type" validate:"omitempty,oneof=ONLINE IN_PERSON"`
	StartAt         string          `json:"start_at" validate:"required,iso8601"`
	EndAt           string          `json:"end_at" validate:"omitempty,iso8601"`
	PaymentID       string          `json:"payment_id"`
	PatientName     string          `json:"patient_name"`
	BookedAt        string          `json:"booked_at" validate:"required,iso8601"`
}

// ProfileRecord is the cached copy of the patient profile.
type ProfileRecord struct {
	Version int     `json:"version" validate:"eq=1"`
	ID      string  `json:"id" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Phone   string  `json:"phone" validate:"required"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UserProfile is the remote API's profile payload.
type UserProfile struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}
