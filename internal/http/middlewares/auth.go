package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	httperrors "github.com/dropDatabas3/quicklendar/internal/http/errors"
	"github.com/dropDatabas3/quicklendar/internal/session"
)

// RequireAuth valida Authorization: Bearer <JWT> y guarda el principal en el
// contexto. Si el token es inválido o no está presente, responde 401.
// El subject del token es el email; la cuenta se resuelve contra el storage
// para obtener el ID y verificar que siga habilitada.
func RequireAuth(issuer *session.Issuer, accounts repository.AccountRepository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			subject, roles, err := issuer.Validate(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			acc, err := accounts.GetByEmail(r.Context(), subject)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			if !acc.Enabled {
				httperrors.WriteError(w, httperrors.ErrAccountDisabled)
				return
			}

			kind := auth.PrincipalLocal
			if acc.Kind == repository.KindOAuth {
				kind = auth.PrincipalFederated
			}
			ctx := auth.WithPrincipal(r.Context(), &auth.Principal{
				AccountID: acc.ID,
				Email:     acc.Email,
				Roles:     roles,
				Kind:      kind,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth intenta validar el token pero NO falla si no está presente.
// Útil para endpoints con comportamiento extra para usuarios autenticados.
func OptionalAuth(issuer *session.Issuer, accounts repository.AccountRepository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			subject, roles, err := issuer.Validate(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			acc, err := accounts.GetByEmail(r.Context(), subject)
			if err != nil || !acc.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			kind := auth.PrincipalLocal
			if acc.Kind == repository.KindOAuth {
				kind = auth.PrincipalFederated
			}
			ctx := auth.WithPrincipal(r.Context(), &auth.Principal{
				AccountID: acc.ID,
				Email:     acc.Email,
				Roles:     roles,
				Kind:      kind,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
