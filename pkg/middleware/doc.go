// Package middleware provides the session authentication middleware.
//
// # AuthMiddleware
//
// AuthMiddleware reads the session token from the "jwt" cookie, verifies
// it, loads the user it names and attaches that user to the request
// context:
//
//	authMW := middleware.NewAuthMiddleware(tokens, store,
//		middleware.WithLogger(logger),
//		middleware.WithMetrics(metrics),
//	)
//	router.Handle("/api/v1/auth/check", authMW.Handler(http.HandlerFunc(h.Check)))
//
// Authenticate makes the decision without touching the response, which
// makes it usable outside of a handler chain. Handler turns the decision
// into at most one response:
//
//   - no cookie: 401 "user not authenticated"
//   - token fails verification: 401 "invalid or expired token"
//   - token names a user that no longer exists: 401 "user not found"
//   - store failure: 500
//   - otherwise next runs with the user in the context and the middleware
//     writes nothing
//
// Downstream handlers read the user with GetUser(r).
package middleware
