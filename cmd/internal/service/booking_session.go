package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"mibo/cmd/internal/domain/entity"
)

type BookingState string

const (
	StateReview     BookingState = "review"
	StateProcessing BookingState = "processing"
	StateSuccess    BookingState = "success"
)

var (
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrSessionClosed     = errors.New("booking session closed")
)

var transitions = map[BookingState][]BookingState{
	StateReview:     {StateProcessing},
	StateProcessing: {StateReview, StateSuccess},
}

// BookingSession is one patient walking through review, payment and
// confirmation of a single appointment. Cancelling its context ends the
// payment poller and the pending redirect; once closed, late responses
// cannot change it.
type BookingSession struct {
	ID uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       BookingState
	draft       *entity.BookingDraft
	appointment *entity.Appointment
	payment     *entity.PaymentStatus
	phone       string
	name        string
	lastError   string
	redirect    string
	timer       *time.Timer
	closed      bool
	createdAt   time.Time
}

type BookingSnapshot struct {
	ID              string                `json:"id"`
	State           BookingState          `json:"state"`
	Appointment     *entity.Appointment   `json:"appointment"`
	Payment         *entity.PaymentStatus `json:"payment,omitempty"`
	LastError       string                `json:"last_error,omitempty"`
	RedirectPending bool                  `json:"redirect_pending"`
	Redirect        string                `json:"redirect,omitempty"`
	CreatedAt       string                `json:"created_at"`
}

func newBookingSession(draft *entity.BookingDraft, appt *entity.Appointment, now time.Time) *BookingSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &BookingSession{
		ID:          uuid.New(),
		ctx:         ctx,
		cancel:      cancel,
		state:       StateReview,
		draft:       draft,
		appointment: appt,
		createdAt:   now,
	}
}

// transition moves from -> to, failing when the session is elsewhere or
// the edge does not exist.
func (s *BookingSession) transition(from, to BookingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(from, to)
}

func (s *BookingSession) transitionLocked(from, to BookingState) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != from || !allowed(from, to) {
		return ErrInvalidTransition
	}
	s.state = to
	return nil
}

func allowed(from, to BookingState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *BookingSession) beginPayment(phone, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StateReview, StateProcessing); err != nil {
		return err
	}
	s.phone = phone
	s.name = name
	s.lastError = ""
	return nil
}

// rollback returns a processing session to review with a message for
// the patient.
func (s *BookingSession) rollback(reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StateProcessing, StateReview); err != nil {
		return false
	}
	s.lastError = reason
	return true
}

// succeed is the single entry into StateSuccess. Only the first caller
// gets true.
func (s *BookingSession) succeed(status *entity.PaymentStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StateProcessing, StateSuccess); err != nil {
		return false
	}
	s.payment = status
	return true
}

func (s *BookingSession) recordPayment(status *entity.PaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && status != nil {
		s.payment = status
	}
}

// scheduleRedirect arms the post-success navigation. A second call, or a
// call on a closed session, does nothing.
func (s *BookingSession) scheduleRedirect(delay time.Duration, route string, fired func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.timer != nil || s.state != StateSuccess {
		return false
	}
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.closed || s.redirect != "" {
			s.mu.Unlock()
			return
		}
		s.redirect = route
		s.mu.Unlock()
		if fired != nil {
			fired()
		}
	})
	return true
}

func (s *BookingSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *BookingSession) contact() (phone, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phone, s.name
}

func (s *BookingSession) State() BookingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *BookingSession) Snapshot() *BookingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &BookingSnapshot{
		ID:              s.ID.String(),
		State:           s.state,
		Appointment:     s.appointment,
		Payment:         s.payment,
		LastError:       s.lastError,
		RedirectPending: s.timer != nil && s.redirect == "" && !s.closed,
		Redirect:        s.redirect,
		CreatedAt:       s.createdAt.UTC().Format(time.RFC3339),
	}
}
