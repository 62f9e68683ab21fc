package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/integration/patientapi"
	"mibo/cmd/internal/utils"
	"mibo/cmd/internal/utils/apierror"
	"mibo/cmd/internal/utils/validators"
)

const notifyTimeout = 10 * time.Second

type BookingAPI interface {
	CreateBooking(ctx context.Context, draft *entity.BookingDraft) (*entity.Appointment, error)
	SendPaymentLink(ctx context.Context, req *patientapi.PaymentLinkRequest) (*entity.PaymentLink, error)
	GetPaymentStatus(ctx context.Context, appointmentID string) (*entity.PaymentStatus, error)
	SendBookingConfirmation(ctx context.Context, note *patientapi.BookingConfirmation) error
}

// BookingOptions tunes the booking flow. SessionTTL evicts sessions older
// than it whenever a new session opens; zero keeps sessions until Close or
// Shutdown.
type BookingOptions struct {
	PhonePrefix   string
	Poll          PollPolicy
	RedirectDelay time.Duration
	RedirectRoute string
	SessionTTL    time.Duration
}

type PaymentLinkRequest struct {
	AppointmentID string `json:"appointment_id"`
	Phone         string `json:"phone"`
	Name          string `json:"name"`
}

type DefaultBookingService struct {
	API      BookingAPI
	Records  *RecordStore
	Validate *validator.Validate
	Clock    utils.Clock
	Options  BookingOptions

	// OnRedirect, when set, observes every redirect that fires.
	OnRedirect func(sessionID uuid.UUID, route string)

	mu           sync.RWMutex
	sessions     map[uuid.UUID]*BookingSession
	shuttingDown bool
	pollers      sync.WaitGroup
}

func NewBookingService(api BookingAPI, records *RecordStore, validate *validator.Validate, clock utils.Clock, opts BookingOptions) *DefaultBookingService {
	return &DefaultBookingService{
		API:      api,
		Records:  records,
		Validate: validate,
		Clock:    clock,
		Options:  opts,
		sessions: make(map[uuid.UUID]*BookingSession),
	}
}

// StartBooking submits the draft and opens a session on the review step.
func (b *DefaultBookingService) StartBooking(ctx context.Context, draft *entity.BookingDraft) (*BookingSnapshot, apierror.ErrorResponse) {
	utils.Sanitize(draft)
	if err := b.Validate.Struct(draft); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	appt, err := b.API.CreateBooking(ctx, draft)
	if err != nil {
		log.Errorf("failed to create booking for doctor %s on %s: %v", draft.Doctor, draft.Date, err)
		return nil, apierror.AsErrorResponse(err)
	}
	if appt.ID == "" {
		log.Errorf("booking for doctor %s on %s came back without an appointment id", draft.Doctor, draft.Date)
		return nil, apierror.NewNetworkError(0, "Booking response is missing the appointment", nil)
	}

	now := b.Clock.Now()
	sess := newBookingSession(draft, appt, now)
	b.mu.Lock()
	if b.shuttingDown {
		b.mu.Unlock()
		sess.close()
		return nil, apierror.ShuttingDownError
	}
	expired := b.evictExpiredLocked(now)
	b.sessions[sess.ID] = sess
	b.mu.Unlock()

	for _, old := range expired {
		old.close()
	}
	return sess.Snapshot(), nil
}

// SendPaymentLink validates the phone number locally, asks the API to
// send a payment link and starts watching the payment. It returns as
// soon as the link request completes; completion is observed by polling.
func (b *DefaultBookingService) SendPaymentLink(ctx context.Context, sessionID uuid.UUID, req *PaymentLinkRequest) (*BookingSnapshot, apierror.ErrorResponse) {
	sess := b.lookup(sessionID)
	if sess == nil {
		return nil, apierror.SessionNotFoundError
	}

	utils.Sanitize(req)
	if verr := ValidatePaymentPhone(req.Phone, b.Options.PhonePrefix); verr != nil {
		return nil, verr
	}
	if req.AppointmentID != "" && req.AppointmentID != sess.appointment.ID {
		return nil, apierror.NewValidationError("appointment_id", "Appointment does not belong to this booking")
	}
	name := req.Name
	if name == "" {
		name = sess.draft.Name
	}

	if err := sess.beginPayment(req.Phone, name); err != nil {
		return nil, sessionError(err)
	}

	_, err := b.API.SendPaymentLink(ctx, &patientapi.PaymentLinkRequest{
		AppointmentID: sess.appointment.ID,
		Phone:         req.Phone,
		Name:          name,
	})
	if err != nil {
		log.Errorf("failed to send payment link for appointment %s: %v", sess.appointment.ID, err)
		apierr := apierror.AsErrorResponse(err)
		sess.rollback(patientMessage(apierr))
		return nil, apierr
	}

	if !b.track(func() { b.watchPayment(sess) }) {
		sess.close()
		return nil, apierror.ShuttingDownError
	}

	return sess.Snapshot(), nil
}

// ValidatePaymentPhone is the local check that runs before any payment
// request leaves the gateway.
func ValidatePaymentPhone(phone, prefix string) *apierror.ValidationError {
	if phone == "" {
		return apierror.NewValidationError("phone", "Phone number is required")
	}
	if !validators.HasPhonePrefix(phone, prefix) {
		return apierror.NewValidationError("phone", "Phone number must start with "+prefix)
	}
	return nil
}

// track runs fn on a goroutine that Shutdown waits for. It refuses once
// Shutdown has started, so Add never races Wait.
func (b *DefaultBookingService) track(fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shuttingDown {
		return false
	}
	b.pollers.Add(1)
	go func() {
		defer b.pollers.Done()
		fn()
	}()
	return true
}

func (b *DefaultBookingService) watchPayment(sess *BookingSession) {
	apptID := sess.appointment.ID
	fetch := func(ctx context.Context) (*entity.PaymentStatus, error) {
		status, err := b.API.GetPaymentStatus(ctx, apptID)
		if err == nil {
			sess.recordPayment(status)
		}
		return status, err
	}

	status, err := PollPaymentStatus(sess.ctx, fetch, b.Options.Poll)
	switch {
	case err == nil:
		b.complete(sess, status)
	case errors.Is(err, ErrPollExhausted):
		log.Warnf("payment for appointment %s not confirmed in time", apptID)
		sess.rollback("Payment not confirmed yet. Please complete the payment and try again.")
	}
}

// complete runs the success side effects exactly once per session.
func (b *DefaultBookingService) complete(sess *BookingSession, status *entity.PaymentStatus) {
	if !sess.succeed(status) {
		return
	}

	appt := sess.appointment
	phone, name := sess.contact()
	summary := &entity.BookingSummary{
		AppointmentID:   appt.ID,
		ClinicianName:   appt.ClinicianName,
		CentreName:      appt.CentreName,
		AppointmentType: appt.AppointmentType,
		StartAt:         utils.FormatTimestamp(appt.ScheduledStartAt),
		PaymentID:       status.PaymentID,
		PatientName:     name,
		BookedAt:        utils.FormatTimestamp(b.Clock.Now()),
	}
	if !appt.ScheduledEndAt.IsZero() {
		summary.EndAt = utils.FormatTimestamp(appt.ScheduledEndAt)
	}
	if err := b.Records.SaveLatestBooking(summary); err != nil {
		log.Errorf("failed to store latest booking %s: %v", appt.ID, err)
	}

	sess.scheduleRedirect(b.Options.RedirectDelay, b.Options.RedirectRoute, func() {
		if b.OnRedirect != nil {
			b.OnRedirect(sess.ID, b.Options.RedirectRoute)
		}
	})

	// The caller is itself tracked, so this Add cannot race Shutdown's
	// Wait; the goroutine only needs to outlive the poller.
	b.pollers.Add(1)
	go func() {
		defer b.pollers.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(sess.ctx), notifyTimeout)
		defer cancel()
		err := b.API.SendBookingConfirmation(ctx, &patientapi.BookingConfirmation{
			AppointmentID: appt.ID,
			PaymentID:     status.PaymentID,
			Phone:         phone,
			Name:          name,
		})
		if err != nil {
			log.Warnf("booking confirmation for %s not sent: %v", appt.ID, err)
		}
	}()
}

func (b *DefaultBookingService) Session(id uuid.UUID) (*BookingSnapshot, apierror.ErrorResponse) {
	sess := b.lookup(id)
	if sess == nil {
		return nil, apierror.SessionNotFoundError
	}
	return sess.Snapshot(), nil
}

// Close ends a session: the poller stops, a pending redirect is
// cancelled and the session is forgotten.
func (b *DefaultBookingService) Close(id uuid.UUID) apierror.ErrorResponse {
	b.mu.Lock()
	sess, ok := b.sessions[id]
	delete(b.sessions, id)
	b.mu.Unlock()

	if !ok {
		return apierror.SessionNotFoundError
	}
	sess.close()
	return nil
}

func (b *DefaultBookingService) LatestBooking() (*entity.BookingSummary, apierror.ErrorResponse) {
	summary, ok := b.Records.LatestBooking()
	if !ok {
		return nil, apierror.NoLatestBookingError
	}
	return summary, nil
}

// Shutdown closes every open session and waits for their pollers.
func (b *DefaultBookingService) Shutdown() {
	b.mu.Lock()
	b.shuttingDown = true
	open := make([]*BookingSession, 0, len(b.sessions))
	for id, sess := range b.sessions {
		open = append(open, sess)
		delete(b.sessions, id)
	}
	b.mu.Unlock()

	for _, sess := range open {
		sess.close()
	}
	b.pollers.Wait()
}

// evictExpiredLocked drops sessions older than SessionTTL and returns
// them for closing outside the lock.
func (b *DefaultBookingService) evictExpiredLocked(now time.Time) []*BookingSession {
	if b.Options.SessionTTL <= 0 {
		return nil
	}
	var expired []*BookingSession
	for id, sess := range b.sessions {
		if now.Sub(sess.createdAt) >= b.Options.SessionTTL {
			expired = append(expired, sess)
			delete(b.sessions, id)
		}
	}
	return expired
}

func (b *DefaultBookingService) lookup(id uuid.UUID) *BookingSession {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessions[id]
}

func patientMessage(err apierror.ErrorResponse) string {
	var netErr *apierror.NetworkError
	if errors.As(err, &netErr) {
		return netErr.Message
	}
	return err.Error()
}

func sessionError(err error) apierror.ErrorResponse {
	if errors.Is(err, ErrSessionClosed) {
		return apierror.SessionNotFoundError
	}
	return apierror.InvalidTransitionError
}
