package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"mibo/cmd/internal/service"
	"mibo/cmd/internal/utils/apierror"
)

type PatientService interface {
	Login(ctx context.Context, req *service.LoginRequest) (*service.LoginResponse, apierror.ErrorResponse)
	Logout() apierror.ErrorResponse
	GetProfile(ctx context.Context) (*service.ProfileResponse, apierror.ErrorResponse)
	UpdateProfile(ctx context.Context, req *service.UpdateProfileRequest) (*service.ProfileResponse, apierror.ErrorResponse)
}

type DefaultPatientRoute struct {
	PatientService PatientService
}

func NewPatientDefault(patientService PatientService) *DefaultPatientRoute {
	return &DefaultPatientRoute{PatientService: patientService}
}

func (p *DefaultPatientRoute) CreateLogin(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := p.PatientService.Login(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (p *DefaultPatientRoute) Logout(c echo.Context) error {
	if apierr := p.PatientService.Logout(); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *DefaultPatientRoute) GetProfile(c echo.Context) error {
	profile, apierr := p.PatientService.GetProfile(c.Request().Context())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, profile)
}

func (p *DefaultPatientRoute) UpdateProfile(c echo.Context) error {
	var req service.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	profile, apierr := p.PatientService.UpdateProfile(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, profile)
}
