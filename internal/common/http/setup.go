package http

import (
	"net/http"
	"strings"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	"github.com/AlibekovAA/estate-hub/internal/common/httpmetrics"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
)

func BuildBaseHandler(appName, clientOrigin string, log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")
	cors := CORSMiddleware(clientOrigin)

	return securityHeaders(csp(cors(recovery(traceID(maxRequestSize(metrics.Wrap(handler)))))))
}

// PathAlias serves paths under from as if they had been requested under to.
func PathAlias(from, to string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest, ok := strings.CutPrefix(r.URL.Path, from)
		if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
			http.NotFound(w, r)
			return
		}

		aliased := r.Clone(r.Context())
		aliased.URL.Path = to + rest
		aliased.URL.RawPath = ""
		next.ServeHTTP(w, aliased)
	})
}
