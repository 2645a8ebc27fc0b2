package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/models"
)

const minPasswordLength = 8

// AccessClaims are the claims carried by an access token
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by a refresh token
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or refresh returns
type TokenPair struct {
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	AccessExpiresAt  time.Time    `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time    `json:"refreshExpiresAt"`
	User             *models.User `json:"user"`
}

// RegisterInput is the request to create a client account
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthService issues and renews credentials
type AuthService struct {
	db            *gorm.DB
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewAuthService creates an auth service using the token settings from cfg
func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:            db,
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		issuer:        cfg.JWTIssuer,
		audience:      cfg.JWTAudience,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		now:           time.Now,
	}
}

// Register creates a client account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	user, err := s.createUser(ctx, email, in.Password, strings.TrimSpace(in.Name), models.RoleClient)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

// EnsureAdmin creates the admin account if no user with that email exists yet
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return storageError("look up admin", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.createUser(ctx, email, password, "Administrator", models.RoleAdmin)
	return err
}

func (s *AuthService) createUser(ctx context.Context, email, password, name, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: a user with this email already exists", ErrConflict)
		}
		return nil, storageError("create user", err)
	}
	return &user, nil
}

// Login checks the credentials and issues a new token pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return nil, storageError("load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		zerolog.Ctx(ctx).Warn().Uint("user_id", user.ID).Msg("login failed: wrong password")
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}

	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now().UTC()
		if err := tx.Model(&user).Update("last_login_at", now).Error; err != nil {
			return storageError("record login", err)
		}
		var err error
		pair, err = s.issuePair(tx, &user)
		return err
	})
	if err != nil {
		return nil, classify("login", err)
	}

	zerolog.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user logged in")
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("jti = ? AND token_hash = ?", claims.ID, hashToken(refreshToken)).First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: refresh token not recognized", ErrUnauthenticated)
			}
			return storageError("load refresh token", err)
		}
		if !stored.Usable(s.now()) {
			return fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthenticated)
		}

		// Conditional update so two concurrent refreshes cannot both succeed
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", stored.ID, false).
			Update("revoked", true)
		if res.Error != nil {
			return storageError("revoke refresh token", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: refresh token already used", ErrUnauthenticated)
		}

		var user models.User
		if err := tx.First(&user, stored.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
			}
			return storageError("load user", err)
		}

		var err error
		pair, err = s.issuePair(tx, &user)
		return err
	})
	if err != nil {
		return nil, classify("refresh", err)
	}
	return pair, nil
}

// Logout revokes a refresh token. Unknown or already revoked tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(refreshToken)).
		Update("revoked", true).Error; err != nil {
		return storageError("revoke refresh token", err)
	}
	return nil
}

// Me returns the user behind the caller identity
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, storageError("load user", err)
	}
	return &user, nil
}

// UpdateProfile changes the display name of the user
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("name", name).Error; err != nil {
		return nil, storageError("update profile", err)
	}
	user.Name = name
	return user, nil
}

// CreateAccessToken signs an access token for the user
func (s *AuthService) CreateAccessToken(user *models.User, expiresAt time.Time) (string, error) {
	claims := AccessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

func (s *AuthService) createRefreshToken(user *models.User, jti string, expiresAt time.Time) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

func (s *AuthService) issuePair(tx *gorm.DB, user *models.User) (*TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access, err := s.CreateAccessToken(user, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	jti := uuid.NewString()
	refresh, err := s.createRefreshToken(user, jti, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored := models.RefreshToken{
		TokenHash: hashToken(refresh),
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: refreshExp.UTC(),
	}
	if err := tx.Create(&stored).Error; err != nil {
		return nil, storageError("store refresh token", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp.UTC(),
		RefreshExpiresAt: refreshExp.UTC(),
		User:             user,
	}, nil
}

func (s *AuthService) parseRefresh(token string) (*RefreshClaims, error) {
	if token == "" {
		return nil, validationError("refreshToken is required")
	}

	var claims RefreshClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.refreshSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthenticated)
	}
	return &claims, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("email %q is not valid", email)
	}
	return email, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// isUniqueViolation matches duplicate key errors from both PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
