package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/service"
	"mibo/cmd/internal/utils/apierror"
)

type AppointmentService interface {
	ListAppointments(ctx context.Context) (*service.AppointmentListResponse, apierror.ErrorResponse)
	RequestCancellation(ctx context.Context, id string) (*service.AppointmentResponse, apierror.ErrorResponse)
	GetVideoLink(ctx context.Context, id string) (*entity.VideoLink, apierror.ErrorResponse)
	GetDashboard(ctx context.Context) (*entity.Dashboard, apierror.ErrorResponse)
	ListPayments(ctx context.Context) (*service.PaymentListResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	appts, apierr := a.AppointmentService.ListAppointments(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) CancelAppointment(c echo.Context) error {
	appt, apierr := a.AppointmentService.RequestCancellation(c.Request().Context(), c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusAccepted, appt)
}

func (a *DefaultAppointmentRoute) GetVideoLink(c echo.Context) error {
	link, apierr := a.AppointmentService.GetVideoLink(c.Request().Context(), c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, link)
}

func (a *DefaultAppointmentRoute) GetDashboard(c echo.Context) error {
	dash, apierr := a.AppointmentService.GetDashboard(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, dash)
}

func (a *DefaultAppointmentRoute) GetPayments(c echo.Context) error {
	payments, apierr := a.AppointmentService.ListPayments(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, payments)
}
