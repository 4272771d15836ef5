package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

// CronSecretHeader carries the shared secret external schedulers present.
const CronSecretHeader = "X-Cron-Secret"

// RequireCronSecret admits requests whose X-Cron-Secret header equals
// secret. An empty secret rejects every request.
func RequireCronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(CronSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				response.HandleError(w, user.ErrInvalidCronSecret)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
