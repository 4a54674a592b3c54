package utils

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"social-executor/internal/transfer"
)

// GenerateApprovalToken mints the token embedded in one-click approval links
// sent to the owner. It authorizes approving a single post id.
func GenerateApprovalToken(secretKey, postID string, tokenDuration time.Duration) (string, error) {
	claims := transfer.ApprovalClaims{
		PostID: postID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "social-executor",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return signedToken, nil
}

func ValidateApprovalToken(secretKey, tokenString string) (*transfer.ApprovalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &transfer.ApprovalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if claims, ok := token.Claims.(*transfer.ApprovalClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
