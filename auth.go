package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"udhaar/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// hashSecret applies the basic password policy and returns the bcrypt hash.
func hashSecret(secret string) ([]byte, error) {
	if len(secret) < 6 { // basic password policy
		return nil, fmt.Errorf("password too short (min 6)")
	}
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}

func checkSecret(hashed []byte, secret string) bool {
	return bcrypt.CompareHashAndPassword(hashed, []byte(secret)) == nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// issueAccessToken signs a short-lived HS256 token carrying the user id and
// resolved role name.
func (s *server) issueAccessToken(user *models.User, ttl time.Duration) (string, error) {
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := s.db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"phone": user.Phone,
		"role":  roleName,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func (s *server) createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	rt := models.RefreshToken{UserID: userID, TokenHash: hex.EncodeToString(h[:]), ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL)}
	if err := s.db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// findRefreshTokenByRaw looks up the stored record for a raw token string.
func (s *server) findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	var rt models.RefreshToken
	if err := s.db.Where("token_hash = ?", hex.EncodeToString(h[:])).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}
