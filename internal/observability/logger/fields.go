package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }

// ---- OAuth / Discord ----

// Provider identifica el proveedor de identidad ("discord").
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Scope es un scope OAuth2 (p.ej. "guilds").
func Scope(v string) zap.Field { return zap.String("scope", v) }

// Endpoint es el path de la API remota, sin query.
func Endpoint(v string) zap.Field { return zap.String("endpoint", v) }

// UserID es el snowflake del usuario de Discord.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email loguea el email enmascarado (n…@e….com), nunca en claro.
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

// ClientID es el client_id de la aplicación OAuth.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Outcome resume el resultado de una operación (ok, upstream_error, ...).
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Err(err error) zap.Field      { return zap.Error(err) }
func Count(v int) zap.Field        { return zap.Int("count", v) }
