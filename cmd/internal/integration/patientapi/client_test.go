package patientapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/utils/apierror"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

type failingToken struct{ err error }

func (f failingToken) Token(context.Context) (string, error) {
	return "", f.err
}

func newFakeAPI(t *testing.T, register func(e *echo.Echo)) string {
	t.Helper()
	e := echo.New()
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL
}

func ok(data any) echo.Map {
	return echo.Map{"success": true, "data": data}
}

func TestClient_ListAppointments(t *testing.T) {
	var gotAuth string
	base := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/patient/appointments", func(c echo.Context) error {
			gotAuth = c.Request().Header.Get("Authorization")
			return c.JSON(http.StatusOK, ok(echo.Map{"appointments": []echo.Map{
				{"id": "a1", "clinician_name": "Dr. Rao", "status": "CONFIRMED", "appointment_type": "ONLINE", "scheduled_start_at": "2024-06-02T10:00:00Z"},
			}}))
		})
	})

	client := NewClient(base+"/", time.Second, staticToken("tok-1"))
	appts, err := client.ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appts, 1)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "a1", appts[0].ID)
	assert.Equal(t, entity.AppointmentOnline, appts[0].AppointmentType)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC), appts[0].ScheduledStartAt.UTC())
}

func TestClient_NoTokenSendsNoHeader(t *testing.T) {
	var hasAuth bool
	base := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/patient/profile", func(c echo.Context) error {
			_, hasAuth = c.Request().Header["Authorization"]
			return c.JSON(http.StatusOK, ok(echo.Map{"id": "p1", "name": "Asha", "phone": "+919876543210"}))
		})
	})

	profile, err := NewClient(base, time.Second, staticToken("")).GetProfile(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
	assert.Equal(t, "Asha", profile.Name)
	assert.Nil(t, profile.Email)
}

func TestClient_RemoteErrorBecomesNetworkError(t *testing.T) {
	base := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/payments/send-link", func(c echo.Context) error {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": "Appointment already paid"})
		})
	})

	_, err := NewClient(base, time.Second, nil).SendPaymentLink(context.Background(), &PaymentLinkRequest{AppointmentID: "a1"})

	var netErr *apierror.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusUnprocessableEntity, netErr.Status)
	assert.Equal(t, "Appointment already paid", netErr.Message)
	assert.Equal(t, http.StatusBadGateway, netErr.Code())
}

func TestClient_UnsuccessfulEnvelope(t *testing.T) {
	base := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/payments/status/:id", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"success": false, "message": "unknown appointment"})
		})
	})

	_, err := NewClient(base, time.Second, nil).GetPaymentStatus(context.Background(), "a1")

	var netErr *apierror.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "unknown appointment", netErr.Message)
}

func TestClient_NotFoundStatusIsForwarded(t *testing.T) {
	base := newFakeAPI(t, func(e *echo.Echo) {})

	_, err := NewClient(base, time.Second, nil).GetVideoLink(context.Background(), "a1")

	var netErr *apierror.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusNotFound, netErr.Code())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, time.Second, nil).GetDashboard(context.Background())

	var netErr *apierror.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.Status)
	assert.NotEmpty(t, netErr.Message)
}

func TestClient_TokenErrorStopsRequest(t *testing.T) {
	called := false
	base := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/patient/payments", func(c echo.Context) error {
			called = true
			return c.JSON(http.StatusOK, ok(nil))
		})
	})

	tokenErr := errors.New("refresh failed")
	_, err := NewClient(base, time.Second, failingToken{tokenErr}).ListPayments(context.Background())
	assert.ErrorIs(t, err, tokenErr)
	assert.False(t, called)
}

func TestClient_PathsAndBodies(t *testing.T) {
	var gotBody PaymentLinkRequest
	var cancelled, notified string
	base := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/payments/send-link", func(c echo.Context) error {
			if err := c.Bind(&gotBody); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, ok(echo.Map{"appointmentId": gotBody.AppointmentID, "paymentId": "pay_1"}))
		})
		e.POST("/patient/appointments/:id/cancel-request", func(c echo.Context) error {
			cancelled = c.Param("id")
			return c.JSON(http.StatusOK, ok(echo.Map{"id": cancelled, "status": "CANCELLATION_REQUESTED"}))
		})
		e.GET("/video/appointment/:id/meet-link", func(c echo.Context) error {
			return c.JSON(http.StatusOK, ok(echo.Map{"appointmentId": c.Param("id"), "meetLink": "https://meet.test/x"}))
		})
		e.POST("/notifications/booking-confirmation", func(c echo.Context) error {
			var note BookingConfirmation
			if err := c.Bind(&note); err != nil {
				return err
			}
			notified = note.AppointmentID
			return c.JSON(http.StatusOK, echo.Map{"success": true})
		})
	})
	client := NewClient(base, time.Second, nil)
	ctx := context.Background()

	link, err := client.SendPaymentLink(ctx, &PaymentLinkRequest{AppointmentID: "a1", Phone: "+919876543210", Name: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", link.PaymentID)
	assert.Equal(t, "+919876543210", gotBody.Phone)

	appt, err := client.RequestCancellation(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "a2", cancelled)
	assert.Equal(t, entity.StatusCancellationRequested, appt.Status)

	video, err := client.GetVideoLink(ctx, "a3")
	require.NoError(t, err)
	assert.Equal(t, "https://meet.test/x", video.MeetLink)

	require.NoError(t, client.SendBookingConfirmation(ctx, &BookingConfirmation{AppointmentID: "a4"}))
	assert.Equal(t, "a4", notified)
}
