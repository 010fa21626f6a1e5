// Package api provides the authgate HTTP API.
//
// # Endpoints
//
//	POST /api/v1/auth/register  {name, email, password}  201 | 400 | 409 | 500
//	POST /api/v1/auth/login     {email, password}        200 | 400 | 404 | 500
//	POST /api/v1/auth/logout                             200
//	GET  /api/v1/auth/check     (session cookie)         200 | 401 | 500
//
// Successful calls answer with AuthResponse; register and login also set
// the HttpOnly "jwt" session cookie, and logout clears it. Failures use the
// httputil error envelope.
//
// Login distinguishes an unknown email (400, "user not found, please
// register.") from a wrong password (404, "wrong credentials"). An unknown
// email never reaches password verification.
//
// # Wiring
//
//	handlers := api.NewAuthHandlers(api.AuthDeps{
//		Store:      store,
//		Hasher:     auth.NewBcryptHasher(cfg.Auth.BcryptCost),
//		Tokens:     tokens,
//		Middleware: middleware.NewAuthMiddleware(tokens, store),
//		Cookies:    api.CookieConfig{Name: "jwt", TTL: cfg.Auth.TokenTTL, Secure: true},
//	})
//	server := api.NewServer(logger, metrics, api.ServerOptions{}, handlers)
//	http.ListenAndServe(":8080", server)
//
// Responses only ever contain auth.PublicUser, never the stored password
// digest.
package api
