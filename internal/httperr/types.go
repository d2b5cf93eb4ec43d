// Package httperr traduce errores del dominio a respuestas JSON.
package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/discordauth/internal/oauth/discord"
	"github.com/dropDatabas3/discordauth/internal/oauth/httpget"
)

// AppError es el error estándar que ve el cliente HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail devuelve una COPIA con detail seteado.
func (e *AppError) WithDetail(detail string) *AppError {
	out := *e
	out.Detail = detail
	return &out
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	out := *e
	out.Err = err
	return &out
}

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene parámetros inválidos o faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidState = &AppError{
		Code:       "INVALID_STATE",
		Message:    "El parámetro state no coincide o expiró.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Se requiere una sesión válida.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAccessDenied = &AppError{
		Code:       "ACCESS_DENIED",
		Message:    "El usuario no fue aceptado.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrUpstream = &AppError{
		Code:       "UPSTREAM_ERROR",
		Message:    "Discord no respondió correctamente.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrUpstreamBody = &AppError{
		Code:       "UPSTREAM_BAD_RESPONSE",
		Message:    "Discord devolvió una respuesta que no se pudo interpretar.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Demasiadas solicitudes a Discord, reintentar más tarde.",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	ErrMisconfigured = &AppError{
		Code:       "MISCONFIGURED",
		Message:    "El proveedor de login no está configurado correctamente.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error inesperado en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// FromError mapea cualquier error a un AppError. Lo que no reconoce es 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var status *httpget.StatusError
	if errors.As(err, &status) && status.Code == http.StatusTooManyRequests {
		e := ErrRateLimited.WithCause(err)
		if status.RetryAfter > 0 {
			e.Detail = fmt.Sprintf("retry after %s", status.RetryAfter)
		}
		return e
	}

	switch {
	case errors.Is(err, discord.ErrUserRejected):
		return ErrAccessDenied.WithCause(err)
	case errors.Is(err, discord.ErrUpstream):
		return ErrUpstream.WithCause(err)
	case errors.Is(err, discord.ErrParse), errors.Is(err, discord.ErrDecode):
		return ErrUpstreamBody.WithCause(err)
	case errors.Is(err, discord.ErrConfig):
		return ErrMisconfigured.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}
