package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DOMINIO
// =================================================================================

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Email crea un campo para el email (úselo con cuidado, es PII).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// Provider crea un campo para el proveedor OAuth (google, naver).
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// CompetitionID crea un campo para el ID de un concurso.
func CompetitionID(v string) zap.Field {
	return zap.String("competition_id", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - INFRAESTRUCTURA
// =================================================================================

// Layer identifica la capa (http, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Component identifica el componente dentro de la capa.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op identifica la operación dentro del componente.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String crea un campo string genérico.
func String(k, v string) zap.Field {
	return zap.String(k, v)
}

// Int crea un campo int genérico.
func Int(k string, v int) zap.Field {
	return zap.Int(k, v)
}

// Bool crea un campo bool genérico.
func Bool(k string, v bool) zap.Field {
	return zap.Bool(k, v)
}
