// Package auth resolves the user behind each HTTP request.
//
// It supports two modes:
//   - "none": single-user deployment; a default local account is ensured on
//     startup and injected into every request
//   - "token": callers present the API token issued for their account, either
//     as "Authorization: Bearer <token>" or once via POST /login, which
//     establishes a cookie session
//
// # Configuration
//
//	AUTH_MODE=none                 # Default
//	AUTH_MODE=token
//	AUTH_SESSION_SECRET=<32 bytes> # CSRF key; generated per process if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true
//
// # Usage
//
//	mw, err := auth.NewMiddleware(userRepo, sessions, cfg.Auth)
//	router.Use(sessions.SessionLoadSave(), mw.Handler(), auth.CSRFMiddleware(secret, cfg.Auth.SecureCookies))
//
// Handlers read the caller with auth.GetUserID(c), which is 0 when nobody is
// authenticated.
package auth
