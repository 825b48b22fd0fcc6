package service

import (
	"errors"
	"fmt"
	"time"

	"go-ledger-api/config"
	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

func getJwtKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

// AuthService is the in-process identity collaborator: it registers users,
// checks credentials and issues the session tokens that carry the opaque
// owner id the ledger core keys everything by.
type AuthService struct {
	users repository.IUserRepository
}

func NewAuthService(users repository.IUserRepository) *AuthService {
	return &AuthService{users: users}
}

func (s *AuthService) Register(req model.RegisterRequest) (*model.User, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	logger.Log.WithField("owner_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies credentials and returns a signed session token plus the
// user record.
func (s *AuthService) Login(req model.LoginRequest) (string, *model.User, error) {
	user, err := s.users.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPasswordHash(req.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Profile returns the stored user record behind an owner id.
func (s *AuthService) Profile(ownerID string) (*model.User, error) {
	return s.users.GetUserByID(ownerID)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateJWT(ownerID string) (string, error) {
	expirationTime := time.Now().Add(1 * time.Hour)

	claims := &model.AppClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(getJwtKey())
	if err != nil {
		logger.Log.WithError(err).WithField("owner_id", ownerID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}
