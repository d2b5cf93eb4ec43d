// Package providers normaliza los proveedores de login social detrás de una
// interfaz común.
//
// Arquitectura:
// - Provider: métodos que todo proveedor implementa
// - Registry: factories + instancias cacheadas por (proveedor, client_id)
// - Implementaciones: un sub-paquete por proveedor
package providers

import "context"

// ProviderType indicates the authentication protocol.
type ProviderType string

const (
	ProviderTypeOIDC   ProviderType = "oidc"
	ProviderTypeOAuth2 ProviderType = "oauth2"
)

// Provider defines the interface all social login providers implement.
type Provider interface {
	// Identity
	Name() string
	Type() ProviderType

	// Flow
	AuthorizeURL(state string, params map[string]string) string
	Exchange(ctx context.Context, code string) (*TokenSet, error)
	UserInfo(ctx context.Context, accessToken string) (*UserProfile, error)

	// Configuration
	Configure(cfg ProviderConfig) error
	Validate() error
}

// ProviderConfig contains the configuration for a provider instance.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// Provider-specific extra config
	Extra map[string]string
}

// TokenSet contains tokens received from the provider.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string // OIDC only
	ExpiresIn    int
	TokenType    string
}

// UserProfile is a normalized user profile from any provider.
type UserProfile struct {
	Provider   string
	ProviderID string
	Username   string
	Email      string
	Name       string
	Picture    string

	EmailVerified bool

	// Raw data for extensibility
	Raw map[string]any
}
