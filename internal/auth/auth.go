// Package auth verifies owner session tokens and issues short-lived
// download tokens for game servers.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const downloadAudience = "mml-download"

// Config holds the token secrets.
type Config struct {
	SessionSecret  string        `env:"SESSION_SECRET,required"`
	DownloadSecret string        `env:"DOWNLOAD_SECRET"` // default: SessionSecret
	DownloadTTL    time.Duration `env:"DOWNLOAD_TTL"`    // default: 10m
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	sessionKey  []byte
	downloadKey []byte
	downloadTTL time.Duration
	now         func() time.Time
}

func New(cfg *Config) *Tokens {
	downloadSecret := cfg.DownloadSecret
	if downloadSecret == "" {
		downloadSecret = cfg.SessionSecret
	}
	downloadTTL := cfg.DownloadTTL
	if downloadTTL <= 0 {
		downloadTTL = 10 * time.Minute
	}
	return &Tokens{
		sessionKey:  []byte(cfg.SessionSecret),
		downloadKey: []byte(downloadSecret),
		downloadTTL: downloadTTL,
		now:         time.Now,
	}
}

type sessionClaims struct {
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// ParseSession returns the owner id of a valid session token.
// The id is read from sub, or from userId for older tokens.
func (t *Tokens) ParseSession(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.UUID{}, ErrMissingToken
	}

	jwtToken, err := jwt.ParseWithClaims(
		s,
		&sessionClaims{},
		func(*jwt.Token) (any, error) {
			return t.sessionKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims := jwtToken.Claims.(*sessionClaims)

	subject := claims.Subject
	if subject == "" {
		subject = claims.UserID
	}
	if subject == "" {
		return uuid.UUID{}, fmt.Errorf("%w: empty sub token claim", ErrInvalidToken)
	}
	ownerID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: sub token claim: %w", ErrInvalidToken, err)
	}

	return ownerID, nil
}

// CreateSession signs a session token for an owner. Sessions are issued
// elsewhere; this exists for operators and tests.
func (t *Tokens) CreateSession(ownerID uuid.UUID, ttl time.Duration) (string, error) {
	now := t.now()
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: ownerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	return jwtToken.SignedString(t.sessionKey)
}

type DownloadType string

const (
	DownloadTypeBootstrap DownloadType = "bootstrap"
	DownloadTypeContainer DownloadType = "container"
)

// Download grants one kind of download for a game.
type Download struct {
	Type        DownloadType
	GameID      string
	ContainerID string // only for DownloadTypeContainer
	ExpiresAt   time.Time
}

type downloadClaims struct {
	Type        DownloadType `json:"type"`
	GameID      string       `json:"gameId"`
	ContainerID string       `json:"containerId,omitempty"`
	jwt.RegisteredClaims
}

// CreateDownload signs a download token valid for the configured TTL.
func (t *Tokens) CreateDownload(typ DownloadType, gameID, containerID string) (string, *Download, error) {
	now := t.now()
	d := &Download{
		Type:        typ,
		GameID:      gameID,
		ContainerID: containerID,
		ExpiresAt:   now.Add(t.downloadTTL).Truncate(time.Second),
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		Type:        d.Type,
		GameID:      d.GameID,
		ContainerID: d.ContainerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{downloadAudience},
			ExpiresAt: jwt.NewNumericDate(d.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	s, err := jwtToken.SignedString(t.downloadKey)
	if err != nil {
		return "", nil, fmt.Errorf("auth.CreateDownload: %w", err)
	}
	return s, d, nil
}

// ParseDownload verifies a download token.
func (t *Tokens) ParseDownload(s string) (*Download, error) {
	if s == "" {
		return nil, ErrMissingToken
	}

	jwtToken, err := jwt.ParseWithClaims(
		s,
		&downloadClaims{},
		func(*jwt.Token) (any, error) {
			return t.downloadKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(downloadAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims := jwtToken.Claims.(*downloadClaims)

	switch claims.Type {
	case DownloadTypeBootstrap, DownloadTypeContainer:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidToken, claims.Type)
	}
	if claims.GameID == "" {
		return nil, fmt.Errorf("%w: empty gameId token claim", ErrInvalidToken)
	}

	return &Download{
		Type:        claims.Type,
		GameID:      claims.GameID,
		ContainerID: claims.ContainerID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token of a Bearer authorization header.
// It doesn't check for missing header or multiple headers.
func BearerToken(h string) (string, error) {
	scheme, params, _ := strings.Cut(h, " ")

	if scheme == "" {
		return "", ErrMissingToken
	}

	if got, want := scheme, "Bearer"; !strings.EqualFold(got, want) {
		return "", fmt.Errorf("got unsupported scheme %q, want %q", got, want)
	}

	token := strings.TrimSpace(params)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
