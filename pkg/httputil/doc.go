// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Error Responses
//
// Every failed request is answered with one JSON envelope:
//
//	{"success": false, "error": "wrong_credentials", "message": "wrong credentials"}
//
// WriteError derives both the status and the envelope from the error. The
// status comes from StatusFor, which maps each auth.Kind to exactly one
// status code; errors that carry no auth.Error are reported as 500 with a
// generic message.
//
//	if err := svc.Login(ctx, req); err != nil {
//		httputil.WriteError(w, err)
//		return
//	}
//
// # Request Parsing
//
//	var req LoginRequest
//	if err := httputil.ParseJSON(r, &req); err != nil {
//		httputil.WriteError(w, err)
//		return
//	}
//	if err := httputil.RequireNonEmpty(
//		httputil.Field{Name: "email", Value: req.Email},
//		httputil.Field{Name: "password", Value: req.Password},
//	); err != nil {
//		httputil.WriteError(w, err)
//		return
//	}
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//		httputil.CORSMiddleware(origins),
//		httputil.MaxBytesMiddleware(1 << 20),
//	)(router)
package httputil
