package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
)

// RequestID пробрасывает X-Request-ID (или генерирует новый) в ответ
// и в запросы к справочнику салонов
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(salonservice.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(salonservice.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(salonservice.WithRequestID(r.Context(), id)))
	})
}
