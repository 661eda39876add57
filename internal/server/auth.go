// auth.go - Bearer-token admin gate on top of the managed identity provider.
//
// Token verification is delegated: the provider publishes its signing keys as
// a JWKS and the verifier checks tokens against them. The gate adds the only
// logic this service owns — header parsing and the UID allow-list check.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified claim set for one request. It lives only for the
// request that produced it.
type Identity struct {
	UID   string
	Email string
}

// ErrUnauthorized covers every gate failure: missing or malformed header,
// failed verification, UID outside the allow-list. Collapsing them prevents
// probing which step rejected a request.
var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier exchanges a bearer token for a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// JWKSVerifier verifies RS256 tokens against the provider's published keys.
type JWKSVerifier struct {
	keys   keyfunc.Keyfunc
	issuer string
}

type providerClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// NewJWKSVerifier fetches the key set from jwksURL and keeps it refreshed in
// the background for the lifetime of ctx.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string) (*JWKSVerifier, error) {
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	return &JWKSVerifier{keys: kf, issuer: issuer}, nil
}

// NewJWKSVerifierFromKeyfunc builds a verifier around an existing key set.
// Used by tests that supply a static JWKS.
func NewJWKSVerifierFromKeyfunc(kf keyfunc.Keyfunc, issuer string) *JWKSVerifier {
	return &JWKSVerifier{keys: kf, issuer: issuer}
}

func (v *JWKSVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims providerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, v.keys.Keyfunc, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrUnauthorized
	}
	return Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// Gate authorizes admin requests: header → verified token → allow-listed UID.
type Gate struct {
	cfg      Config
	verifier TokenVerifier
}

func NewGate(cfg Config, verifier TokenVerifier) *Gate {
	return &Gate{cfg: cfg, verifier: verifier}
}

// Authorize checks a raw Authorization header value and returns the admin
// identity. Every failure mode returns ErrUnauthorized.
func (g *Gate) Authorize(ctx context.Context, header string) (Identity, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return Identity{}, ErrUnauthorized
	}
	id, err := g.verifier.Verify(ctx, fields[1])
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	if !g.cfg.IsAdmin(id.UID) {
		return Identity{}, ErrUnauthorized
	}
	return id, nil
}

// requireAdmin wraps admin-only handlers behind the gate. Handlers past this
// middleware may trust the identity stored in the request context.
func (g *Gate) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminFromContext returns the authenticated admin identity, if any.
func AdminFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
