package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/danilofalcao/llama-relay/internal/utils"
	contextutils "github.com/danilofalcao/llama-relay/internal/utils/context"
	logutils "github.com/danilofalcao/llama-relay/internal/utils/logger"
)

const requestIDHeader = "X-Request-ID"

// withContext takes the server's context including its logger, injects a request ID and
// timeout, and sets it as the request's context.
func withContext(srvCtx context.Context, next http.Handler, timeout time.Duration) http.Handler {
	lgr := logutils.FromContext(srvCtx)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logutils.ContextWithLogger(r.Context(), lgr)

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		// Generate request ID
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		// Add request ID to context and response headers
		ctx = contextutils.WithRequestID(ctx, requestID)
		w.Header().Set(requestIDHeader, requestID)

		// set our request's context
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}
