package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inamate/timegraph/internal/typeid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingName  = errors.New("display name is required")
)

const tokenTTL = 24 * time.Hour

// Service issues and validates HS256 session tokens. There are no
// accounts: a token carries the user id and display name it was issued for.
type Service struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// IssueToken creates a new user id for displayName and signs a token for it.
func (s *Service) IssueToken(displayName string) (*AuthResult, error) {
	if displayName == "" {
		return nil, ErrMissingName
	}

	user := User{ID: typeid.NewUserID(), DisplayName: displayName}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken returns the user id of a valid token.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	user, err := s.ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// ParseToken returns the user a valid token was issued for.
func (s *Service) ParseToken(tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token subject: %w", ErrInvalidToken)
	}
	if err := typeid.Validate(userID, typeid.PrefixUser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	name, _ := claims["name"].(string)

	return &User{ID: userID, DisplayName: name}, nil
}

func (s *Service) issueToken(user User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.DisplayName,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
