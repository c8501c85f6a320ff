package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/autohours-api-go/pkg/config"
	"github.com/arnavshah/autohours-api-go/pkg/database"
)

const (
	tokenTTL   = 24 * time.Hour
	bcryptCost = 12
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Claims represents the JWT claims of an admin session
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator signs admin tokens and client API keys
type Authenticator struct {
	jwtSecret []byte
	keySecret []byte
}

// New builds an Authenticator from the configured secrets
func New(cfg *config.Configuration) *Authenticator {
	return &Authenticator{
		jwtSecret: []byte(cfg.JWTSecret),
		keySecret: []byte(cfg.APIMasterSecret),
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateToken creates a JWT for an admin user
func (a *Authenticator) CreateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

// VerifyToken parses and validates an admin JWT
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *Authenticator) sign(clientID string) string {
	h := hmac.New(sha256.New, a.keySecret)
	h.Write([]byte(clientID))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateAPIKey creates a "clientID.signature" key using HMAC-SHA256
func (a *Authenticator) GenerateAPIKey(clientID string) string {
	return clientID + "." + a.sign(clientID)
}

// VerifyAPIKey validates an HMAC-signed API key and returns its client id
func (a *Authenticator) VerifyAPIKey(key string) (string, error) {
	clientID, signature, ok := strings.Cut(key, ".")
	if !ok || clientID == "" || strings.Contains(signature, ".") {
		return "", ErrInvalidKeyFormat
	}
	if !hmac.Equal([]byte(signature), []byte(a.sign(clientID))) {
		return "", ErrInvalidSignature
	}
	return clientID, nil
}

// KeyPreview masks a key for listings
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// EnsureAdminExists creates the configured admin user when the table is empty
func EnsureAdminExists(db *gorm.DB, cfg *config.Configuration, log logrus.FieldLogger) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count admin users")
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash admin password")
	}
	user := database.MasterUser{Username: cfg.AdminUsername, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		return errors.Wrap(err, "failed to create admin user")
	}
	log.WithField("username", user.Username).Info("default admin user created")
	return nil
}
