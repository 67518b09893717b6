package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

type access int

const (
	accessRead access = iota
	accessWrite
)

var (
	errAccessDenied   = errors.New("access denied")
	errUnauthorized   = errors.New("authentication required")
	errReadOnlyAPIKey = errors.New("api key is read-only")
)

// requireAuth enforces the LAN auth settings of the running configuration.
//
// A bearer API key is checked first: the rw key grants every request, the
// read key grants reads only. Otherwise deny rejects, allow passes, and the
// password types are checked as HTTP basic credentials. Digest is checked as
// basic here.
func (s *Server) requireAuth(level access, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := s.store.Get()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}

		status, err := authorize(cfg, level, r)
		if err != nil {
			logging.Debug("LAN auth rejected request",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("path", r.URL.Path),
				zap.Stringer("lan_auth_type", cfg.LANAuth.Type),
				zap.Error(err),
			)
			if status == http.StatusUnauthorized {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+cfg.Device.Hostname+`", charset="UTF-8"`)
			}
			writeError(w, status, err)
			return
		}
		next(w, r)
	}
}

func authorize(cfg *gwcfg.Config, level access, r *http.Request) (int, error) {
	l := cfg.LANAuth

	if token, ok := bearerToken(r); ok {
		switch {
		case l.Type.HasAPIKeys() && l.APIKeyRW != "" && secureEqual(token, l.APIKeyRW):
			return http.StatusOK, nil
		case l.Type.HasAPIKeys() && l.APIKey != "" && secureEqual(token, l.APIKey):
			if level == accessWrite {
				return http.StatusForbidden, errReadOnlyAPIKey
			}
			return http.StatusOK, nil
		default:
			return http.StatusUnauthorized, errUnauthorized
		}
	}

	switch l.Type {
	case gwcfg.LANAuthDeny:
		return http.StatusForbidden, errAccessDenied
	case gwcfg.LANAuthAllow:
		return http.StatusOK, nil
	}

	wantUser, wantPass := l.User, l.Pass
	if l.Type == gwcfg.LANAuthDefault {
		wantUser = gwcfg.DefaultLANAuthUser
		if wantPass == "" {
			wantPass = gwcfg.DefaultLANAuthPassword(cfg.Device.Params())
		}
	}

	user, pass, ok := r.BasicAuth()
	if !ok || !secureEqual(user, wantUser) || !secureEqual(pass, wantPass) {
		return http.StatusUnauthorized, errUnauthorized
	}
	return http.StatusOK, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
