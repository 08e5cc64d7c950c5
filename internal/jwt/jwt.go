package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"slices"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"teenpatti-server/internal/config"
)

// Issuer issues the JWT
const Issuer = "identity.teenpatti"

// Audience is the intended JWT audience
const Audience = "tables.teenpatti"

var publicKey *rsa.PublicKey

// Claims are the claims the identity service puts in a token
type Claims struct {
	jwtgo.RegisteredClaims
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Identity is the verified user behind a token
type Identity struct {
	UserID      string
	DisplayName string
	Avatar      string
}

// LoadKeys will load the public key used to verify tokens
// this method should only be called once.
func LoadKeys() {
	SetPublicKey(loadPublicKey(config.Instance().JWT.PublicKey))
}

// SetPublicKey sets the key used to verify tokens
func SetPublicKey(key *rsa.PublicKey) {
	publicKey = key
}

// Verify will validate a signed JWT and return the identity it carries
func Verify(signedString string) (Identity, error) {
	if publicKey == nil {
		panic("LoadKeys() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &Claims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodRSA); !ok {
			return nil, errors.New("expected RS256 signing method")
		}

		return publicKey, nil
	})

	if err != nil {
		return Identity{}, err
	}

	if !token.Valid {
		logrus.Warn("token claims were not valid. did not expect to reach this code")
		return Identity{}, errors.New("claims were not valid")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Identity{}, fmt.Errorf("expected *jwt.Claims, got %T", token.Claims)
	}

	if !slices.Contains(claims.Audience, Audience) {
		return Identity{}, errors.New("invalid audience")
	}

	if claims.Issuer != Issuer {
		return Identity{}, errors.New("invalid issuer")
	}

	if claims.Subject == "" {
		return Identity{}, errors.New("missing subject")
	}

	return Identity{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		Avatar:      claims.Avatar,
	}, nil
}

// ValidUserID will validate a signed JWT and return its subject
func ValidUserID(signedString string) (string, error) {
	identity, err := Verify(signedString)
	if err != nil {
		return "", err
	}

	return identity.UserID, nil
}

func loadPublicKey(path string) *rsa.PublicKey {
	b, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).Fatal("could not read file")
	}

	pem, err := jwtgo.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		logrus.WithError(err).Fatal("could not parse RSA public key")
	}

	return pem
}
