package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/statushub/statushub/internal/model"
)

// Claims represents scoped-token JWT claims: the bound (table, partition,
// row) and the capability granted over it.
type Claims struct {
	jwt.RegisteredClaims
	Table      string `json:"tbl"`
	Partition  string `json:"par"`
	Row        string `json:"row"`
	Capability string `json:"cap"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key. The
// same key must be shared by the issuing and the verifying service.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, now: time.Now}
}

// tokenTTL is fixed at issuance; there is no revocation, tokens expire
// naturally.
const tokenTTL = 24 * time.Hour

// Generate creates a token bound to exactly one (table, partition, row) with
// the given capability, expiring 24 hours from now.
func (j *JWT) Generate(table, partition, row string, capability model.Capability) (string, error) {
	if !capability.Valid() {
		return "", fmt.Errorf("unknown capability %q", capability)
	}

	now := j.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Table:      table,
		Partition:  partition,
		Row:        row,
		Capability: string(capability),
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign scoped token: %w", err)
	}

	return tokenString, nil
}

// Verify validates the signature and expiry and extracts the grant. Any
// failure is reported as model.ErrTokenInvalid; callers never learn whether
// the signature or the expiry was at fault.
func (j *JWT) Verify(tokenString string) (model.Grant, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(func() time.Time { return j.now() }))
	if err != nil {
		return model.Grant{}, fmt.Errorf("%w: %w", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return model.Grant{}, model.ErrTokenInvalid
	}

	capability := model.Capability(claims.Capability)
	if !capability.Valid() || claims.Table == "" || claims.Partition == "" || claims.Row == "" {
		return model.Grant{}, model.ErrTokenInvalid
	}

	grant := model.Grant{
		Table:      claims.Table,
		Partition:  claims.Partition,
		Row:        claims.Row,
		Capability: capability,
	}
	if claims.ExpiresAt != nil {
		grant.ExpiresAt = claims.ExpiresAt.Time
	}
	return grant, nil
}
