package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"fact_checker/internal/domain"
)

type ctxKey string

const identityKey ctxKey = "identity"

// withIdentity resolves the authenticated caller forwarded by the gateway
// (X-User-ID header) into a domain.Identity. Requests without the header
// proceed anonymously; handlers that need a caller use requireIdentity.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			s.respondError(w, r, domain.ErrPermissionDenied)
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(w, r, domain.ErrPermissionDenied)
			return
		}
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		identity := domain.Identity{
			UserID: user.ID,
			Role:   user.Role,
			Staff:  user.Staff,
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(r *http.Request) (domain.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(domain.Identity)
	return identity, ok
}

// requireIdentity writes a 403 and returns false when the request carries no
// authenticated caller.
func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := identityFrom(r)
	if !ok {
		s.respondError(w, r, domain.ErrPermissionDenied)
		return domain.Identity{}, false
	}
	return identity, true
}
