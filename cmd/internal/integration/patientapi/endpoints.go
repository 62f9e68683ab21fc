package patientapi

import (
	"context"
	"net/http"
	"net/url"

	"mibo/cmd/internal/domain/entity"
)

type ProfileUpdate struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

type PaymentLinkRequest struct {
	AppointmentID string `json:"appointmentId"`
	Phone         string `json:"phone"`
	Name          string `json:"name"`
}

type BookingConfirmation struct {
	AppointmentID string `json:"appointmentId"`
	PaymentID     string `json:"paymentId,omitempty"`
	Phone         string `json:"phone"`
	Name          string `json:"name"`
}

func (c *Client) GetDashboard(ctx context.Context) (*entity.Dashboard, error) {
	var dash entity.Dashboard
	if err := c.do(ctx, http.MethodGet, "/patient/dashboard", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (c *Client) ListAppointments(ctx context.Context) ([]*entity.Appointment, error) {
	var data struct {
		Appointments []*entity.Appointment `json:"appointments"`
	}
	if err := c.do(ctx, http.MethodGet, "/patient/appointments", nil, &data); err != nil {
		return nil, err
	}
	return data.Appointments, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]*entity.Payment, error) {
	var data struct {
		Payments []*entity.Payment `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/patient/payments", nil, &data); err != nil {
		return nil, err
	}
	return data.Payments, nil
}

func (c *Client) GetProfile(ctx context.Context) (*entity.UserProfile, error) {
	var profile entity.UserProfile
	if err := c.do(ctx, http.MethodGet, "/patient/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update *ProfileUpdate) (*entity.UserProfile, error) {
	var profile entity.UserProfile
	if err := c.do(ctx, http.MethodPut, "/patient/profile", update, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) CreateBooking(ctx context.Context, draft *entity.BookingDraft) (*entity.Appointment, error) {
	var appt entity.Appointment
	if err := c.do(ctx, http.MethodPost, "/booking", draft, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (c *Client) SendPaymentLink(ctx context.Context, req *PaymentLinkRequest) (*entity.PaymentLink, error) {
	var link entity.PaymentLink
	if err := c.do(ctx, http.MethodPost, "/payments/send-link", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, appointmentID string) (*entity.PaymentStatus, error) {
	var status entity.PaymentStatus
	path := "/payments/status/" + url.PathEscape(appointmentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) GetVideoLink(ctx context.Context, appointmentID string) (*entity.VideoLink, error) {
	var link entity.VideoLink
	path := "/video/appointment/" + url.PathEscape(appointmentID) + "/meet-link"
	if err := c.do(ctx, http.MethodGet, path, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) RequestCancellation(ctx context.Context, appointmentID string) (*entity.Appointment, error) {
	var appt entity.Appointment
	path := "/patient/appointments/" + url.PathEscape(appointmentID) + "/cancel-request"
	if err := c.do(ctx, http.MethodPost, path, nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (c *Client) SendBookingConfirmation(ctx context.Context, note *BookingConfirmation) error {
	return c.do(ctx, http.MethodPost, "/notifications/booking-confirmation", note, nil)
}
