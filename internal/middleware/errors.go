package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/infrastructure"
)

// problemTypes covers the statuses middleware answers on its own, before a
// handler or the router's error handler runs.
var problemTypes = map[int]string{
	http.StatusTooManyRequests:     apierrors.TypeRateLimit,
	http.StatusInternalServerError: apierrors.TypeInternal,
	http.StatusGatewayTimeout:      apierrors.TypeTimeout,
}

// writeProblem answers with an RFC 7807 document carrying the request's
// trace id.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = GetReqID(r.Context())
	}

	problemType, ok := problemTypes[status]
	if !ok {
		problemType = apierrors.TypeInternal
	}
	problem := apierrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, r.URL.Path)
	if traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}
