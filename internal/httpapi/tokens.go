package httpapi

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"restopos/backend/internal/domain"
)

const tokenIssuer = "restopos"

// accessClaims are the claims of a back-office access token. Permissions are
// fixed when the token is issued.
type accessClaims struct {
	jwtlib.RegisteredClaims
	Role        string              `json:"role"`
	Permissions []domain.Permission `json:"perms"`
}

type tokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (s tokenSigner) issue(actor domain.Actor) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actor.Username,
			Issuer:    tokenIssuer,
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
		Role:        actor.Role,
		Permissions: actor.Permissions,
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s tokenSigner) verify(raw string) (domain.Actor, error) {
	claims := &accessClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(tokenIssuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return domain.Actor{
		Username:    claims.Subject,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, nil
}
