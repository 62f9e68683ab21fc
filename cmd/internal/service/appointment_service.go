package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/utils"
	"mibo/cmd/internal/utils/apierror"
)

type AppointmentAPI interface {
	ListAppointments(ctx context.Context) ([]*entity.Appointment, error)
	RequestCancellation(ctx context.Context, appointmentID string) (*entity.Appointment, error)
	GetVideoLink(ctx context.Context, appointmentID string) (*entity.VideoLink, error)
	GetDashboard(ctx context.Context) (*entity.Dashboard, error)
	ListPayments(ctx context.Context) ([]*entity.Payment, error)
}

type AppointmentResponse struct {
	*entity.Appointment
	DisplayDate     string `json:"display_date"`
	DisplayTime     string `json:"display_time"`
	DurationMinutes int    `json:"duration_minutes"`
	StartingSoon    bool   `json:"starting_soon"`
	StartsIn        string `json:"starts_in"`
	IsToday         bool   `json:"is_today"`
}

type AppointmentListResponse struct {
	Current []*AppointmentResponse `json:"current"`
	Past    []*AppointmentResponse `json:"past"`
	Empty   bool                   `json:"empty"`
}

type PaymentListResponse struct {
	Payments []*entity.Payment `json:"payments"`
	Empty    bool              `json:"empty"`
}

type DefaultAppointmentService struct {
	API          AppointmentAPI
	Clock        utils.Clock
	StartingSoon time.Duration
}

func NewAppointmentService(api AppointmentAPI, clock utils.Clock, startingSoon time.Duration) *DefaultAppointmentService {
	return &DefaultAppointmentService{API: api, Clock: clock, StartingSoon: startingSoon}
}

// ListAppointments fetches the whole list and splits it into current and
// past. Nothing is cached between calls.
func (a *DefaultAppointmentService) ListAppointments(ctx context.Context) (*AppointmentListResponse, apierror.ErrorResponse) {
	appts, err := a.API.ListAppointments(ctx)
	if err != nil {
		log.Errorf("failed to fetch appointments: %v", err)
		return nil, apierror.AsErrorResponse(err)
	}

	current, past := PartitionAppointments(a.Clock, appts)
	resp := &AppointmentListResponse{
		Current: make([]*AppointmentResponse, len(current)),
		Past:    make([]*AppointmentResponse, len(past)),
		Empty:   len(appts) == 0,
	}
	for i, appt := range current {
		resp.Current[i] = a.toAppointmentResponse(appt)
	}
	for i, appt := range past {
		resp.Past[i] = a.toAppointmentResponse(appt)
	}
	return resp, nil
}

func (a *DefaultAppointmentService) RequestCancellation(ctx context.Context, id string) (*AppointmentResponse, apierror.ErrorResponse) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierror.NewMissingParamError("id")
	}

	appt, err := a.API.RequestCancellation(ctx, id)
	if err != nil {
		log.Errorf("failed to request cancellation of appointment %s: %v", id, err)
		return nil, apierror.AsErrorResponse(err)
	}
	if appt.ID == "" {
		appt.ID = id
	}
	return a.toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) GetVideoLink(ctx context.Context, id string) (*entity.VideoLink, apierror.ErrorResponse) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierror.NewMissingParamError("id")
	}

	link, err := a.API.GetVideoLink(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch video link for appointment %s: %v", id, err)
		return nil, apierror.AsErrorResponse(err)
	}
	if link.MeetLink == "" {
		return nil, apierror.NoVideoLinkError
	}
	return link, nil
}

func (a *DefaultAppointmentService) GetDashboard(ctx context.Context) (*entity.Dashboard, apierror.ErrorResponse) {
	dash, err := a.API.GetDashboard(ctx)
	if err != nil {
		log.Errorf("failed to fetch dashboard: %v", err)
		return nil, apierror.AsErrorResponse(err)
	}
	return dash, nil
}

func (a *DefaultAppointmentService) ListPayments(ctx context.Context) (*PaymentListResponse, apierror.ErrorResponse) {
	payments, err := a.API.ListPayments(ctx)
	if err != nil {
		log.Errorf("failed to fetch payments: %v", err)
		return nil, apierror.AsErrorResponse(err)
	}
	if payments == nil {
		payments = []*entity.Payment{}
	}
	return &PaymentListResponse{Payments: payments, Empty: len(payments) == 0}, nil
}

// IsCurrentAppointment is true for appointments that start after now and
// are neither cancelled nor completed.
func IsCurrentAppointment(clock utils.Clock, appt *entity.Appointment) bool {
	return utils.IsFuture(clock, appt.ScheduledStartAt) && !appt.IsTerminal()
}

// PartitionAppointments splits appts into current (soonest first) and
// past (latest first).
func PartitionAppointments(clock utils.Clock, appts []*entity.Appointment) (current, past []*entity.Appointment) {
	current = []*entity.Appointment{}
	past = []*entity.Appointment{}
	for _, appt := range appts {
		if appt == nil {
			continue
		}
		if IsCurrentAppointment(clock, appt) {
			current = append(current, appt)
		} else {
			past = append(past, appt)
		}
	}

	sort.SliceStable(current, func(i, j int) bool {
		return current[i].ScheduledStartAt.Before(current[j].ScheduledStartAt)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].ScheduledStartAt.After(past[j].ScheduledStartAt)
	})
	return current, past
}

func (a *DefaultAppointmentService) toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{Appointment: appt}
	if appt.ScheduledStartAt.IsZero() {
		return resp
	}

	start := appt.ScheduledStartAt
	resp.DisplayDate = utils.FormatDisplayDate(start, utils.DateMedium)
	resp.DisplayTime = utils.FormatTimeOfDay(start)
	resp.StartsIn = utils.DescribeRelative(a.Clock, start)
	resp.IsToday = utils.IsToday(a.Clock, start)
	resp.StartingSoon = !appt.IsTerminal() && utils.IsAppointmentStartingSoon(a.Clock, start, a.StartingSoon)
	if !appt.ScheduledEndAt.IsZero() {
		resp.DurationMinutes = utils.GetDurationInMinutes(start, appt.ScheduledEndAt)
	}
	return resp
}
