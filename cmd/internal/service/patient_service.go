package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"mibo/cmd/internal/domain/entity"
	cognitoclient "mibo/cmd/internal/integration/aws/cognito"
	"mibo/cmd/internal/integration/patientapi"
	"mibo/cmd/internal/utils"
	"mibo/cmd/internal/utils/apierror"
)

type ProfileAPI interface {
	GetProfile(ctx context.Context) (*entity.UserProfile, error)
	UpdateProfile(ctx context.Context, update *patientapi.ProfileUpdate) (*entity.UserProfile, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,nospaces,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type LoginResponse struct {
	ExpiresIn int32 `json:"expires_in"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=80"`
	Phone string `json:"phone" validate:"required,phoneprefix"`
	Email string `json:"email" validate:"omitempty,email"`
}

type ProfileResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
	Stale bool    `json:"stale"`
}

var LoginUnavailableError = apierror.NewSimple(http.StatusServiceUnavailable, "Patient login is not configured")

type DefaultPatientService struct {
	API      ProfileAPI
	Records  *RecordStore
	Validate *validator.Validate
	Cognito  cognitoclient.CognitoInterface
}

func NewPatientService(api ProfileAPI, records *RecordStore, validate *validator.Validate, cogClient cognitoclient.CognitoInterface) *DefaultPatientService {
	return &DefaultPatientService{API: api, Records: records, Validate: validate, Cognito: cogClient}
}

// Login authenticates the patient with Cognito and keeps the tokens on
// this device for later API calls.
func (p *DefaultPatientService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, apierror.ErrorResponse) {
	if p.Cognito == nil {
		return nil, LoginUnavailableError
	}

	utils.Sanitize(req)
	if err := p.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	credentials := &cognitoclient.UserLogin{Email: req.Email, Password: req.Password}
	auth, apierr := handleUserSignin(ctx, p.Cognito, credentials)
	if apierr != nil {
		return nil, apierr
	}

	if err := p.Records.SaveTokens(auth.AccessToken, auth.RefreshToken); err != nil {
		log.Errorf("failed to store tokens for %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}
	return &LoginResponse{ExpiresIn: auth.ExpiresIn}, nil
}

func (p *DefaultPatientService) Logout() apierror.ErrorResponse {
	if err := p.Records.ClearSession(); err != nil {
		log.Errorf("failed to clear local session: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

// GetProfile prefers the API. When the API cannot be reached the cached
// profile is served and flagged stale.
func (p *DefaultPatientService) GetProfile(ctx context.Context) (*ProfileResponse, apierror.ErrorResponse) {
	profile, err := p.API.GetProfile(ctx)
	if err == nil {
		p.cacheProfile(profile)
		return toProfileResponse(profile), nil
	}

	log.Errorf("failed to fetch profile: %v", err)
	var netErr *apierror.NetworkError
	if errors.As(err, &netErr) && (netErr.Status == 0 || netErr.Status >= 500) {
		if cached, ok := p.Records.Profile(); ok {
			return &ProfileResponse{ID: cached.ID, Name: cached.Name, Phone: cached.Phone, Email: cached.Email, Stale: true}, nil
		}
	}
	return nil, apierror.AsErrorResponse(err)
}

func (p *DefaultPatientService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*ProfileResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := p.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	update := &patientapi.ProfileUpdate{Name: req.Name, Phone: req.Phone}
	if req.Email != "" {
		update.Email = &req.Email
	}

	profile, err := p.API.UpdateProfile(ctx, update)
	if err != nil {
		log.Errorf("failed to update profile: %v", err)
		return nil, apierror.AsErrorResponse(err)
	}

	p.cacheProfile(profile)
	return toProfileResponse(profile), nil
}

func (p *DefaultPatientService) cacheProfile(profile *entity.UserProfile) {
	record := &entity.ProfileRecord{ID: profile.ID, Name: profile.Name, Phone: profile.Phone, Email: profile.Email}
	if err := p.Records.SaveProfile(record); err != nil {
		log.Warnf("profile %s not cached: %v", profile.ID, err)
	}
}

func handleUserSignin(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.UserLogin) (*cognitoclient.AuthCreate, apierror.ErrorResponse) {
	auth, err := cogClient.SignIn(ctx, req)
	if err == nil {
		return auth, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UserNotFoundException":
			return nil, apierror.IDPUserNotFoundError
		case "UserNotConfirmedException":
			return nil, apierror.IDPUserNotConfirmedError
		case "NotAuthorizedException":
			return nil, apierror.IDPCredentialsMismatchError
		default:
			log.Errorf("signin failed for patient (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return nil, apierror.InternalServerError
		}
	}

	log.Errorf("failed to signin patient (%s): %v", req.Email, err)
	return nil, apierror.InternalServerError
}

func toProfileResponse(profile *entity.UserProfile) *ProfileResponse {
	return &ProfileResponse{
		ID:    profile.ID,
		Name:  profile.Name,
		Phone: profile.Phone,
		Email: profile.Email,
	}
}
