// Package auth provides optional bearer-token authentication for the
// gateway's HTTP surface.
//
// Tokens are HS256-signed JWTs carrying a "sub" claim. The daemon
// enables the middleware only when auth.jwt_secret is configured;
// without a secret the gateway is open, which is the expected mode for
// a unix socket with filesystem permissions.
//
//	verifier := auth.NewJWTVerifier(secret)
//	token, _ := verifier.Generate("cli", 30*24*time.Hour)
//	mux := auth.HTTPAuthMiddleware(verifier)(apiMux)
package auth
