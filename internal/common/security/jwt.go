package security

import (
	"errors"
	"time"

	"billed/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GenerateToken(userID, email, userType string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"type":    userType,
		"exp":     time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, can be used in middleware or services
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	return stringClaim(claims, "user_id")
}

func GetEmailFromClaims(claims map[string]interface{}) (string, error) {
	return stringClaim(claims, "email")
}

func GetUserTypeFromClaims(claims map[string]interface{}) (string, error) {
	return stringClaim(claims, "type")
}

func stringClaim(claims map[string]interface{}, key string) (string, error) {
	v, ok := claims[key].(string)
	if !ok || v == "" {
		return "", errors.New(key + " claim is missing or not a string")
	}
	return v, nil
}
