package routes

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/service"
	"mibo/cmd/internal/utils/apierror"
)

type BookingService interface {
	StartBooking(ctx context.Context, draft *entity.BookingDraft) (*service.BookingSnapshot, apierror.ErrorResponse)
	SendPaymentLink(ctx context.Context, sessionID uuid.UUID, req *service.PaymentLinkRequest) (*service.BookingSnapshot, apierror.ErrorResponse)
	Session(id uuid.UUID) (*service.BookingSnapshot, apierror.ErrorResponse)
	Close(id uuid.UUID) apierror.ErrorResponse
	LatestBooking() (*entity.BookingSummary, apierror.ErrorResponse)
}

type DefaultBookingRoute struct {
	BookingService BookingService
}

func NewBookingDefault(bookingService BookingService) *DefaultBookingRoute {
	return &DefaultBookingRoute{BookingService: bookingService}
}

func (b *DefaultBookingRoute) CreateBooking(c echo.Context) error {
	var draft entity.BookingDraft
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	snap, apierr := b.BookingService.StartBooking(c.Request().Context(), &draft)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, snap)
}

func (b *DefaultBookingRoute) GetBooking(c echo.Context) error {
	id, apierr := sessionID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	snap, apierr := b.BookingService.Session(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, snap)
}

func (b *DefaultBookingRoute) SendPaymentLink(c echo.Context) error {
	id, apierr := sessionID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.PaymentLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	snap, apierr := b.BookingService.SendPaymentLink(c.Request().Context(), id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusAccepted, snap)
}

func (b *DefaultBookingRoute) CloseBooking(c echo.Context) error {
	id, apierr := sessionID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if apierr := b.BookingService.Close(id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (b *DefaultBookingRoute) GetLatestBooking(c echo.Context) error {
	summary, apierr := b.BookingService.LatestBooking()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, summary)
}

func sessionID(c echo.Context) (uuid.UUID, apierror.ErrorResponse) {
	raw := c.Param("id")
	if raw == "" {
		return uuid.Nil, apierror.NewMissingParamError("id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.NewInvalidParamTypeError("id", "uuid")
	}
	return id, nil
}
