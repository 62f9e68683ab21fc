package cognitoclient

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

var ErrNoAuthResult = errors.New("cognito: challenge or empty authentication result")

type CognitoInterface interface {
	SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthCreate, error)
}

type UserLogin struct {
	Email    string
	Password string
}

// AuthCreate holds the tokens of one authentication. RefreshToken is
// empty after a refresh: Cognito keeps the original one valid.
type AuthCreate struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32
}

type initiateAuthAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

type CognitoClient struct {
	api      initiateAuthAPI
	clientID string
}

func InitCognitoClient(ctx context.Context, region, clientID string) (*CognitoClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &CognitoClient{api: cip.NewFromConfig(cfg), clientID: clientID}, nil
}

func (c *CognitoClient) SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error) {
	return c.initiate(ctx, types.AuthFlowTypeUserPasswordAuth, map[string]string{
		"USERNAME": login.Email,
		"PASSWORD": login.Password,
	})
}

func (c *CognitoClient) Refresh(ctx context.Context, refreshToken string) (*AuthCreate, error) {
	return c.initiate(ctx, types.AuthFlowTypeRefreshTokenAuth, map[string]string{
		"REFRESH_TOKEN": refreshToken,
	})
}

func (c *CognitoClient) initiate(ctx context.Context, flow types.AuthFlowType, params map[string]string) (*AuthCreate, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       flow,
		ClientId:       aws.String(c.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, err
	}

	res := out.AuthenticationResult
	if res == nil {
		return nil, ErrNoAuthResult
	}
	return &AuthCreate{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
	}, nil
}
