/**
 * @description
 * This file contains the authentication middleware. Requests carry a Supabase
 * bearer token; the middleware validates it and injects the owner's user ID
 * into the request context. Both signing setups Supabase supports are handled:
 * the classic shared-secret HS256 tokens and RS256 tokens verified against the
 * project's JWKS endpoint, with the key set cached between requests.
 */
package api

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ownerIDContextKey contextKey = "ownerID"

// AuthConfig controls how incoming bearer tokens are validated.
type AuthConfig struct {
	// JWTSecret enables HS256 validation when set.
	JWTSecret string
	// JWKSURL enables RS256 validation against a JWKS endpoint when set.
	JWKSURL string
	// ExpectedAudience is enforced when non-empty. Supabase issues access
	// tokens with the "authenticated" audience.
	ExpectedAudience string
	// ExpectedIssuer is enforced when non-empty.
	ExpectedIssuer string
}

// AuthMiddleware validates bearer tokens and injects the owner ID (the token's
// sub claim) into the request context. The owner ID is treated as an opaque
// string.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	verifier := newTokenVerifier(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			ownerID, err := verifier.validateToken(r.Context(), tokenString)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDContextKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFromContext returns the authenticated owner ID from request context.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerIDContextKey).(string)
	return ownerID, ok
}

func withOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDContextKey, ownerID)
}

func bearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

type tokenVerifier struct {
	secret   []byte
	jwks     *jwksKeySet
	audience string
	issuer   string
}

func newTokenVerifier(cfg AuthConfig) *tokenVerifier {
	v := &tokenVerifier{
		audience: strings.TrimSpace(cfg.ExpectedAudience),
		issuer:   strings.TrimSpace(cfg.ExpectedIssuer),
	}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		v.secret = []byte(secret)
	}
	if jwksURL := strings.TrimSpace(cfg.JWKSURL); jwksURL != "" {
		v.jwks = newJWKSKeySet(jwksURL)
	}
	return v
}

func (v *tokenVerifier) validateToken(ctx context.Context, tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithLeeway(30*time.Second),
	)
	claims := jwt.MapClaims{}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, errors.New("HS256 tokens not accepted")
			}
			return v.secret, nil
		case *jwt.SigningMethodRSA:
			if v.jwks == nil {
				return nil, errors.New("RS256 tokens not accepted")
			}
			kid, ok := token.Header["kid"].(string)
			if !ok || strings.TrimSpace(kid) == "" {
				return nil, errors.New("missing kid in token")
			}
			return v.jwks.getPublicKey(ctx, kid)
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	})
	if err != nil || !token.Valid {
		return "", errors.New("token validation failed")
	}

	if v.issuer != "" {
		issuer, ok := claims["iss"].(string)
		if !ok || issuer != v.issuer {
			return "", errors.New("issuer mismatch")
		}
	}
	if v.audience != "" && !verifyAudienceClaim(claims["aud"], v.audience) {
		return "", errors.New("audience mismatch")
	}

	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return "", errors.New("subject claim missing")
	}
	return sub, nil
}

func verifyAudienceClaim(audClaim interface{}, expected string) bool {
	switch aud := audClaim.(type) {
	case string:
		return aud == expected
	case []interface{}:
		for _, item := range aud {
			if s, ok := item.(string); ok && s == expected {
				return true
			}
		}
	case []string:
		for _, item := range aud {
			if item == expected {
				return true
			}
		}
	}
	return false
}

// jwksKeySet fetches and caches the RSA public keys from a JWKS endpoint.
type jwksKeySet struct {
	jwksURL    string
	httpClient *http.Client
	cacheTTL   time.Duration

	mu       sync.RWMutex
	expires  time.Time
	keyByKID map[string]*rsa.PublicKey
}

func newJWKSKeySet(jwksURL string) *jwksKeySet {
	return &jwksKeySet{
		jwksURL:    strings.TrimSpace(jwksURL),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cacheTTL:   10 * time.Minute,
		keyByKID:   map[string]*rsa.PublicKey{},
	}
}

func (k *jwksKeySet) getPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key := k.getCachedKey(kid); key != nil {
		return key, nil
	}

	if err := k.refreshKeys(ctx); err != nil {
		return nil, err
	}

	if key := k.getCachedKey(kid); key != nil {
		return key, nil
	}
	return nil, fmt.Errorf("key not found for kid %s", kid)
}

func (k *jwksKeySet) getCachedKey(kid string) *rsa.PublicKey {
	now := time.Now()

	k.mu.RLock()
	defer k.mu.RUnlock()

	if now.After(k.expires) {
		return nil
	}
	return k.keyByKID[kid]
}

func (k *jwksKeySet) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	keys := map[string]*rsa.PublicKey{}
	for _, key := range payload.Keys {
		if key.Kid == "" || key.Kty != "RSA" || key.N == "" || key.E == "" {
			continue
		}
		pub, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("no usable RSA keys in JWKS")
	}

	k.mu.Lock()
	k.keyByKID = keys
	k.expires = time.Now().Add(k.cacheTTL)
	k.mu.Unlock()

	return nil
}

func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var exp uint64
	for _, b := range eb {
		exp = (exp << 8) | uint64(b)
	}
	if exp == 0 {
		return nil, errors.New("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(exp),
	}, nil
}
