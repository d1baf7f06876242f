// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tokens mints and verifies HS256 session tokens. The subject claim is the
// user's ObjectID hex; tokens expire after a fixed window with no refresh
// mechanism.
type Tokens struct {
	secret []byte
	expiry time.Duration
}

// NewTokens builds a token manager with the given signing secret and
// expiry window.
func NewTokens(secret string, expiry time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), expiry: expiry}
}

// sessionClaims carries the identity fields alongside the registered set.
type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var errInvalidToken = errors.New("invalid token")

// Issue signs a session token for the user.
func (t *Tokens) Issue(u models.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a token and returns the identity it encodes.
// Expiry is enforced by the parser.
func (t *Tokens) Verify(raw string) (Identity, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return Identity{}, errInvalidToken
	}

	return Identity{UserID: userID, Name: claims.Name, Email: claims.Email}, nil
}
