package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/NordCoder/Authly/internal/domain/auth"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps the auth error taxonomy to wire statuses. Input/auth
// errors are expected outcomes; everything else is a server-side failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainauth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, domainauth.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainauth.ErrUnauthorized),
		errors.Is(err, domainauth.ErrInvalidToken),
		errors.Is(err, domainauth.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
