package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"

	"ridecoach/internal/store"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required for reading private rides, laps and streams
// (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,activity:read_all,profile:read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config for Strava from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and athlete info from successful auth
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
	Firstname string
	Lastname  string
}

// ExtractAthlete reads the athlete Strava embeds in the token response
func ExtractAthlete(token *oauth2.Token) (id int64, firstname, lastname string) {
	athlete, ok := token.Extra("athlete").(map[string]any)
	if !ok {
		return 0, "", ""
	}
	if v, ok := athlete["id"].(float64); ok {
		id = int64(v)
	}
	firstname, _ = athlete["firstname"].(string)
	lastname, _ = athlete["lastname"].(string)
	return id, firstname, lastname
}

// TokenFromAuth converts stored credentials to an oauth2 token
func TokenFromAuth(a *store.Auth) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       a.ExpiresAt,
	}
}

// AuthFromResult converts a completed OAuth flow to stored credentials
func AuthFromResult(r *AuthResult) *store.Auth {
	expires := r.Token.Expiry
	if expires.IsZero() {
		expires = time.Now().Add(6 * time.Hour)
	}
	return &store.Auth{
		AthleteID:    r.AthleteID,
		AthleteName:  strings.TrimSpace(r.Firstname + " " + r.Lastname),
		AccessToken:  r.Token.AccessToken,
		RefreshToken: r.Token.RefreshToken,
		ExpiresAt:    expires,
	}
}
