package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/domain/sqlite"
	"mibo/cmd/internal/domain/sqlite/repository"
	"mibo/cmd/internal/integration/patientapi"
	"mibo/cmd/internal/utils"
	"mibo/cmd/internal/utils/validators"
)

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// stepClock is a Clock tests can move forward.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestValidate() *validator.Validate {
	v := validator.New()
	validators.Register(v, "+91")
	return v
}

func newTestRecords(t *testing.T) *RecordStore {
	t.Helper()
	db, err := sqlite.Init(":memory:")
	require.NoError(t, err)
	return NewRecordStore(repository.NewStorageRepository(db), newTestValidate(), utils.FixedClock(testNow))
}

// fakePatientAPI backs every API interface the services use. Unset
// funcs fall back to harmless defaults; call counters are atomic since
// the payment poller runs on its own goroutine.
type fakePatientAPI struct {
	CreateBookingFunc       func(ctx context.Context, draft *entity.BookingDraft) (*entity.Appointment, error)
	SendPaymentLinkFunc     func(ctx context.Context, req *patientapi.PaymentLinkRequest) (*entity.PaymentLink, error)
	GetPaymentStatusFunc    func(ctx context.Context, appointmentID string) (*entity.PaymentStatus, error)
	ListAppointmentsFunc    func(ctx context.Context) ([]*entity.Appointment, error)
	RequestCancellationFunc func(ctx context.Context, id string) (*entity.Appointment, error)
	GetVideoLinkFunc        func(ctx context.Context, id string) (*entity.VideoLink, error)
	GetDashboardFunc        func(ctx context.Context) (*entity.Dashboard, error)
	ListPaymentsFunc        func(ctx context.Context) ([]*entity.Payment, error)
	GetProfileFunc          func(ctx context.Context) (*entity.UserProfile, error)
	UpdateProfileFunc       func(ctx context.Context, update *patientapi.ProfileUpdate) (*entity.UserProfile, error)
	ConfirmationFunc        func(ctx context.Context, note *patientapi.BookingConfirmation) error

	CreateBookingCalls   int32
	SendPaymentLinkCalls int32
	StatusCalls          int32
	ConfirmationCalls    int32

	mu            sync.Mutex
	confirmations []*patientapi.BookingConfirmation
}

func (f *fakePatientAPI) CreateBooking(ctx context.Context, draft *entity.BookingDraft) (*entity.Appointment, error) {
	atomic.AddInt32(&f.CreateBookingCalls, 1)
	if f.CreateBookingFunc != nil {
		return f.CreateBookingFunc(ctx, draft)
	}
	return &entity.Appointment{
		ID:               "appt-1",
		ClinicianName:    draft.Doctor,
		CentreName:       draft.Location,
		AppointmentType:  entity.AppointmentInPerson,
		ScheduledStartAt: testNow.Add(24 * time.Hour),
		ScheduledEndAt:   testNow.Add(25 * time.Hour),
		Status:           "PENDING_PAYMENT",
	}, nil
}

func (f *fakePatientAPI) SendPaymentLink(ctx context.Context, req *patientapi.PaymentLinkRequest) (*entity.PaymentLink, error) {
	atomic.AddInt32(&f.SendPaymentLinkCalls, 1)
	if f.SendPaymentLinkFunc != nil {
		return f.SendPaymentLinkFunc(ctx, req)
	}
	return &entity.PaymentLink{AppointmentID: req.AppointmentID, PaymentID: "pay_1"}, nil
}

func (f *fakePatientAPI) GetPaymentStatus(ctx context.Context, appointmentID string) (*entity.PaymentStatus, error) {
	atomic.AddInt32(&f.StatusCalls, 1)
	if f.GetPaymentStatusFunc != nil {
		return f.GetPaymentStatusFunc(ctx, appointmentID)
	}
	return &entity.PaymentStatus{Status: entity.PaymentCreated}, nil
}

func (f *fakePatientAPI) SendBookingConfirmation(ctx context.Context, note *patientapi.BookingConfirmation) error {
	atomic.AddInt32(&f.ConfirmationCalls, 1)
	f.mu.Lock()
	f.confirmations = append(f.confirmations, note)
	f.mu.Unlock()
	if f.ConfirmationFunc != nil {
		return f.ConfirmationFunc(ctx, note)
	}
	return nil
}

func (f *fakePatientAPI) ListAppointments(ctx context.Context) ([]*entity.Appointment, error) {
	if f.ListAppointmentsFunc != nil {
		return f.ListAppointmentsFunc(ctx)
	}
	return nil, nil
}

func (f *fakePatientAPI) RequestCancellation(ctx context.Context, id string) (*entity.Appointment, error) {
	if f.RequestCancellationFunc != nil {
		return f.RequestCancellationFunc(ctx, id)
	}
	return &entity.Appointment{ID: id, Status: entity.StatusCancellationRequested}, nil
}

func (f *fakePatientAPI) GetVideoLink(ctx context.Context, id string) (*entity.VideoLink, error) {
	if f.GetVideoLinkFunc != nil {
		return f.GetVideoLinkFunc(ctx, id)
	}
	return &entity.VideoLink{AppointmentID: id}, nil
}

func (f *fakePatientAPI) GetDashboard(ctx context.Context) (*entity.Dashboard, error) {
	if f.GetDashboardFunc != nil {
		return f.GetDashboardFunc(ctx)
	}
	return &entity.Dashboard{}, nil
}

func (f *fakePatientAPI) ListPayments(ctx context.Context) ([]*entity.Payment, error) {
	if f.ListPaymentsFunc != nil {
		return f.ListPaymentsFunc(ctx)
	}
	return nil, nil
}

func (f *fakePatientAPI) GetProfile(ctx context.Context) (*entity.UserProfile, error) {
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx)
	}
	return &entity.UserProfile{ID: "p1", Name: "Asha", Phone: "+919876543210"}, nil
}

func (f *fakePatientAPI) UpdateProfile(ctx context.Context, update *patientapi.ProfileUpdate) (*entity.UserProfile, error) {
	if f.UpdateProfileFunc != nil {
		return f.UpdateProfileFunc(ctx, update)
	}
	return &entity.UserProfile{ID: "p1", Name: update.Name, Phone: update.Phone, Email: update.Email}, nil
}
