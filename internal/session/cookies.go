package session

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig describe las cookies que escribe el servidor.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (cc CookieConfig) Build(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: ParseSameSite(cc.SameSite),
	}
	if strings.TrimSpace(cc.Domain) != "" {
		ck.Domain = cc.Domain
	}
	if ttl > 0 {
		ck.Expires = time.Now().Add(ttl).UTC()
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func (cc CookieConfig) Delete(name string) *http.Cookie {
	ck := cc.Build(name, "", 0)
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}
