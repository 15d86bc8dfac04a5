// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skku-artclub/artclub/pkg/id"
)

var (
	ErrTokenExpired = jwt.ErrTokenExpired
	ErrInvalidToken = errors.New("invalid token")
)

// AuthClaims is the access token payload. SessionId keys the login session
// in the token store.
type AuthClaims struct {
	UserId    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role"`
	SessionId string `json:"sessionId"`
	jwt.RegisteredClaims
}

// Subject identifies whom a token is minted for.
type Subject struct {
	UserId   string
	Username string
	Role     string
}

var timeFunc = time.Now

// GenToken signs an HS256 access token for sub with a fresh session id.
func GenToken(sub Subject, secretKey []byte, issuer string, expire time.Duration) (string, *AuthClaims, error) {
	if len(secretKey) == 0 {
		return "", nil, errors.New("jwt secret key is empty")
	}
	now := timeFunc()
	claims := &AuthClaims{
		UserId:    sub.UserId,
		Username:  sub.Username,
		Role:      sub.Role,
		SessionId: id.GetUUID(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub.UserId,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// ParseToken verifies aToken and returns its claims. Expired tokens yield
// ErrTokenExpired, anything else ErrInvalidToken.
func ParseToken(aToken, secretKey string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	token, err := jwt.ParseWithClaims(aToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithTimeFunc(timeFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserId == "" || claims.SessionId == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
