package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// GoogleOAuth runs the authorization-code flow and verifies the returned
// ID token against Google's JWKS.
type GoogleOAuth struct {
	oauth   *oauth2.Config
	keyfunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewGoogleOAuth creates the OAuth client. The JWKS is fetched in the
// background and refreshed by keyfunc.
func NewGoogleOAuth(ctx context.Context, clientID, clientSecret, callbackURL, jwksURL string, logger *slog.Logger) (*GoogleOAuth, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("google oauth initialized", "jwks_url", jwksURL, "callback_url", callbackURL)

	return newGoogleOAuth(clientID, clientSecret, callbackURL, jwks.Keyfunc, logger), nil
}

func newGoogleOAuth(clientID, clientSecret, callbackURL string, kf jwt.Keyfunc, logger *slog.Logger) *GoogleOAuth {
	return &GoogleOAuth{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "profile", "email"},
		},
		keyfunc: kf,
		logger:  logger,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for tokens and returns the
// verified identity.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.logger.Warn("google code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: code exchange failed", domain.ErrUnauthorized)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: no id_token in response", domain.ErrUnauthorized)
	}

	return g.VerifyIDToken(rawIDToken)
}

// VerifyIDToken checks signature, audience, issuer and email verification.
func (g *GoogleOAuth) VerifyIDToken(raw string) (*models.GoogleProfile, error) {
	token, err := jwt.ParseWithClaims(raw, &models.GoogleIDClaims{}, g.keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(g.oauth.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		g.logger.Warn("google id token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.GoogleIDClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	issuerOK := false
	for _, iss := range googleIssuers {
		if claims.Issuer == iss {
			issuerOK = true
			break
		}
	}
	if !issuerOK || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("%w: google email not verified", domain.ErrUnauthorized)
	}

	return &models.GoogleProfile{
		GoogleID: claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}, nil
}
