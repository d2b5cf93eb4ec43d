// Package session emite y valida el token de sesión (HS256) que guarda el
// usuario de Discord ya autenticado. Solo se serializa el id y datos de display.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
)

var (
	ErrInvalidToken = errors.New("session: invalid token")
	ErrNoSecret     = errors.New("session: secret is required")
)

// Claims del token de sesión. sub = id de Discord.
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	jwtv5.RegisteredClaims
}

// Issuer firma y valida tokens de sesión.
type Issuer struct {
	secret []byte
	iss    string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer. ttl <= 0 => 12h.
func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Issuer{secret: []byte(secret), iss: iss, ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue serializa el usuario por id.
func (i *Issuer) Issue(p *discord.Profile) (string, error) {
	if p == nil || p.ID == "" {
		return "", errors.New("session: profile without id")
	}
	now := i.now()
	name := p.Username
	if p.GlobalName != nil && *p.GlobalName != "" {
		name = *p.GlobalName
	}
	claims := Claims{
		Username: p.Username,
		Name:     name,
		Avatar:   p.AvatarURL(),
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Subject:   p.ID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(i.ttl)),
		},
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	s, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return s, nil
}

// Parse valida firma, issuer y expiración.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var c Claims
	tk, err := jwtv5.ParseWithClaims(raw, &c, func(*jwtv5.Token) (any, error) { return i.secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(i.iss),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil || !tk.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &c, nil
}
