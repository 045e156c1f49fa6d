// Package httputil holds the JSON request and response helpers and the
// middleware shared by the market's HTTP handlers.
//
// Errors are always written as {"error": "..."}:
//
//	var req LoginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return
//	}
//	httputil.WriteSuccess(w, view)
//
// Middleware composes with Chain:
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(8<<20),
//	)(router)
package httputil
