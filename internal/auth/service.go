package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-trailview/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL = time.Hour
	curatorRole    = "curator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoDatabase         = errors.New("curator database not configured")
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	CuratorID string `json:"curator_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

// CreateCurator stores a curator with a bcrypt hash of the password.
func (s *Service) CreateCurator(ctx context.Context, username, password string) (Curator, error) {
	if s.db == nil {
		return Curator{}, ErrNoDatabase
	}
	if username == "" || password == "" {
		return Curator{}, errors.New("username and password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Curator{}, err
	}

	curator := Curator{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO curators (id, username, password_hash)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, curator.ID, curator.Username, curator.PasswordHash)
	if err := row.Scan(&curator.CreatedAt); err != nil {
		return Curator{}, fmt.Errorf("insert curator: %w", err)
	}
	return curator, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Curator, TokenResponse, error) {
	if s.db == nil {
		return Curator{}, TokenResponse{}, ErrNoDatabase
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM curators WHERE username = $1
	`, req.Username)

	var curator Curator
	if err := row.Scan(&curator.ID, &curator.Username, &curator.PasswordHash, &curator.CreatedAt); err != nil {
		return Curator{}, TokenResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(curator.PasswordHash), []byte(req.Password)); err != nil {
		return Curator{}, TokenResponse{}, ErrInvalidCredentials
	}

	access, err := s.signToken(curator.ID, accessTokenTTL)
	if err != nil {
		return Curator{}, TokenResponse{}, err
	}
	return curator, TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := parseClaims(token, s.secret)
	if err != nil {
		return "", err
	}
	return claims.CuratorID, nil
}

func (s *Service) signToken(curatorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		CuratorID: curatorID,
		Role:      curatorRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func parseClaims(token string, secret []byte) (*Claims, error) {
	parsed, err := parseClaimsFn(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	if claims.Role != curatorRole {
		return nil, errors.New("curator role required")
	}
	return claims, nil
}

var parseClaimsFn = jwt.ParseWithClaims
