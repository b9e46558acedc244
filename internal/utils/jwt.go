package utils // JWT signing and verification for access and refresh tokens

import (
    "crypto/rsa"
    "errors"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"       // jti generation
)

// Fixed issuer/audience pair every token carries and every verification
// enforces.  Tokens minted for another audience never validate here.
const (
    Issuer   = "auth-service"
    Audience = "auth-clients"
)

// Leeway tolerated on exp/iat checks to absorb clock skew between the
// issuing and verifying hosts.
const clockSkewLeeway = 30 * time.Second

var (
    // ErrSigningKeyMissing is returned when the signer is constructed
    // without usable key material for the configured algorithm.
    ErrSigningKeyMissing = errors.New("jwt: signing key missing")
    // ErrUnsupportedAlgorithm is returned for algorithms outside the
    // supported HS256/RS256 pair.
    ErrUnsupportedAlgorithm = errors.New("jwt: unsupported algorithm")
)

// Claims is the full claim set carried by both access and refresh tokens.
// Access and refresh tokens issued together share SessionID but carry
// distinct jti values (RegisteredClaims.ID).
type Claims struct {
    Roles       []string `json:"roles,omitempty"`
    Permissions []string `json:"permissions,omitempty"`
    Scope       string   `json:"scope,omitempty"`
    SessionID   string   `json:"sid,omitempty"`
    jwt.RegisteredClaims
}

// TokenPayload is what callers provide when minting a token; jti, issuer,
// audience and timestamps are filled in by the signer.
type TokenPayload struct {
    UserID      string
    Roles       []string
    Permissions []string
    Scope       string
    SessionID   string
}

// SignedToken bundles a serialized token with its identifier and expiry.
type SignedToken struct {
    Token     string
    JTI       string
    ExpiresAt time.Time
}

// Signer issues and verifies tokens with a single configured algorithm.
// Symmetric (HS256) and asymmetric (RS256) signing are both supported; the
// verifying key must belong to the same algorithm family or construction
// fails closed rather than falling back.
type Signer struct {
    method     jwt.SigningMethod
    signKey    any
    verifyKey  any
    accessTTL  time.Duration
    refreshTTL time.Duration
}

// NewSigner builds a Signer for the given algorithm.  For HS256 the secret
// serves both roles.  For RS256 the private key is PEM-parsed; the public
// key is taken from publicPEM when provided, otherwise derived from the
// private key.
func NewSigner(alg, secret, privatePEM, publicPEM string, accessTTL, refreshTTL time.Duration) (*Signer, error) {
    s := &Signer{accessTTL: accessTTL, refreshTTL: refreshTTL}
    switch strings.ToUpper(alg) {
    case "HS256":
        if secret == "" {
            return nil, ErrSigningKeyMissing
        }
        s.method = jwt.SigningMethodHS256
        s.signKey = []byte(secret)
        s.verifyKey = []byte(secret)
    case "RS256":
        if privatePEM == "" {
            return nil, ErrSigningKeyMissing
        }
        priv, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
        if err != nil {
            return nil, err
        }
        var pub *rsa.PublicKey
        if publicPEM != "" {
            pub, err = jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
            if err != nil {
                return nil, err
            }
        } else {
            pub = &priv.PublicKey
        }
        s.method = jwt.SigningMethodRS256
        s.signKey = priv
        s.verifyKey = pub
    default:
        return nil, ErrUnsupportedAlgorithm
    }
    return s, nil
}

// SignAccess mints a short-lived access token for the payload.
func (s *Signer) SignAccess(p TokenPayload) (SignedToken, error) {
    return s.sign(p, s.accessTTL)
}

// SignRefresh mints a long-lived refresh token for the payload.
func (s *Signer) SignRefresh(p TokenPayload) (SignedToken, error) {
    return s.sign(p, s.refreshTTL)
}

func (s *Signer) sign(p TokenPayload, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    jti := uuid.NewString()
    claims := Claims{
        Roles:       p.Roles,
        Permissions: p.Permissions,
        Scope:       p.Scope,
        SessionID:   p.SessionID,
        RegisteredClaims: jwt.RegisteredClaims{
            ID:        jti,
            Subject:   p.UserID,
            Issuer:    Issuer,
            Audience:  jwt.ClaimStrings{Audience},
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, JTI: jti, ExpiresAt: exp}, nil
}

// Verify parses and validates a serialized token: signature, algorithm,
// issuer, audience and expiry (with leeway).  No store lookup happens here;
// revocation checks belong to the refresh-token path, which consults the
// persisted record separately.
func (s *Signer) Verify(raw string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
        // ParseWithClaims already restricts methods via WithValidMethods,
        // but keeping the check here means a misconfigured parser still
        // rejects a cross-algorithm token.
        if t.Method.Alg() != s.method.Alg() {
            return nil, jwt.ErrTokenSignatureInvalid
        }
        return s.verifyKey, nil
    },
        jwt.WithValidMethods([]string{s.method.Alg()}),
        jwt.WithIssuer(Issuer),
        jwt.WithAudience(Audience),
        jwt.WithLeeway(clockSkewLeeway),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        return nil, err
    }
    if !tok.Valid {
        return nil, jwt.ErrTokenUnverifiable
    }
    return claims, nil
}
