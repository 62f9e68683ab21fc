package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/smithy-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/gommon/log"

	cognitoclient "mibo/cmd/internal/integration/aws/cognito"
	"mibo/cmd/internal/utils"
	"mibo/cmd/internal/utils/apierror"
)

const DefaultRefreshSkew = 60 * time.Second

// TokenManager supplies the bearer token for the patient API, refreshing
// it through Cognito shortly before it expires. The token is only read,
// never verified: the API does that.
type TokenManager struct {
	Records *RecordStore
	Cognito cognitoclient.CognitoInterface
	Clock   utils.Clock
	Skew    time.Duration

	mu sync.Mutex
}

func NewTokenManager(records *RecordStore, cogClient cognitoclient.CognitoInterface, clock utils.Clock) *TokenManager {
	return &TokenManager{Records: records, Cognito: cogClient, Clock: clock, Skew: DefaultRefreshSkew}
}

func (t *TokenManager) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	access := t.Records.AccessToken()
	if access == "" || t.Cognito == nil || !t.expiresSoon(access) {
		return access, nil
	}

	refresh := t.Records.RefreshToken()
	if refresh == "" {
		return access, nil
	}

	auth, err := t.Cognito.Refresh(ctx, refresh)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotAuthorizedException" {
			if cerr := t.Records.ClearSession(); cerr != nil {
				log.Errorf("failed to clear expired session: %v", cerr)
			}
			return "", apierror.IDPSessionExpiredError
		}
		log.Warnf("token refresh failed, using current token: %v", err)
		return access, nil
	}

	if err := t.Records.SaveTokens(auth.AccessToken, auth.RefreshToken); err != nil {
		log.Errorf("failed to store refreshed token: %v", err)
	}
	return auth.AccessToken, nil
}

// expiresSoon reads exp from a JWT. Opaque tokens and tokens without exp
// are never refreshed proactively.
func (t *TokenManager) expiresSoon(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(t.Clock.Now()) <= t.Skew
}
