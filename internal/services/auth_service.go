package services

import (
	"context"
	"strings"
	"time"

	"beacon-chat/config"
	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/repository"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and verifies bearer credentials for both account kinds
// and runs the shared lockout state machine.
type AuthService struct {
	accountRepo     repository.AccountRepository
	jwtSecret       []byte
	userTTL         time.Duration
	adminTTL        time.Duration
	maxFailedLogins int
	lockoutDuration time.Duration
}

func NewAuthService(accountRepo repository.AccountRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		accountRepo:     accountRepo,
		jwtSecret:       []byte(cfg.JWTSecret),
		userTTL:         time.Duration(cfg.JWTExpiryMin) * time.Minute,
		adminTTL:        time.Duration(cfg.AdminJWTExpiryMin) * time.Minute,
		maxFailedLogins: cfg.MaxFailedLogins,
		lockoutDuration: time.Duration(cfg.LockoutMin) * time.Minute,
	}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Kind        string
	Role        string
}

type LoginInput struct {
	Identity string // username or email
	Password string
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	Account     AccountInfo `json:"account"`
}

type AccountInfo struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
}

type AccessClaims struct {
	AccountID string `json:"sub"`
	Kind      string `json:"knd"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if in.Kind == "" {
		in.Kind = account.KindUser
	}
	if in.Role == "" {
		in.Role = account.RoleMember
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}

	if _, err := s.accountRepo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResponse{}, beacon_errors.ErrAlreadyExists
	}
	if _, err := s.accountRepo.GetByUsername(ctx, in.Username); err == nil {
		return AuthResponse{}, beacon_errors.ErrAlreadyExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	now := time.Now()
	a := &account.Account{
		ID:           uuid.New(),
		Kind:         in.Kind,
		Username:     in.Username,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, a); err != nil {
		return AuthResponse{}, err
	}

	token, expiresIn, err := s.newAccessToken(*a)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		Account:     toAccountInfo(*a),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Identity == "" || in.Password == "" {
		return AuthResponse{}, beacon_errors.ErrInvalidInput
	}

	a, err := s.getByIdentity(ctx, in.Identity)
	if err != nil {
		if err == beacon_errors.ErrNotFound {
			return AuthResponse{}, beacon_errors.ErrUnauthorized
		}
		return AuthResponse{}, err
	}

	if !a.IsActive {
		return AuthResponse{}, beacon_errors.ErrAccountInactive
	}
	if a.IsLocked(time.Now()) {
		return AuthResponse{}, beacon_errors.ErrAccountLocked
	}

	if err := comparePassword(a.PasswordHash, in.Password); err != nil {
		if lockErr := s.recordFailure(ctx, a); lockErr != nil {
			return AuthResponse{}, lockErr
		}
		return AuthResponse{}, beacon_errors.ErrUnauthorized
	}

	if a.FailedLoginAttempts > 0 || a.LockedUntil.Valid {
		if err := s.accountRepo.ResetLockout(ctx, a.ID); err != nil {
			return AuthResponse{}, err
		}
	}

	token, expiresIn, err := s.newAccessToken(a)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		Account:     toAccountInfo(a),
	}, nil
}

// ParseAccessToken verifies the bearer credential and returns its claims.
func (s *AuthService) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	if tokenStr == "" {
		return nil, beacon_errors.ErrUnauthorized
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, beacon_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, beacon_errors.ErrUnauthorized
	}
	return claims, nil
}

// CurrentAccount resolves the token's subject against the account store.
func (s *AuthService) CurrentAccount(ctx context.Context, claims *AccessClaims) (account.Account, error) {
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return account.Account{}, beacon_errors.ErrUnauthorized
	}
	a, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return account.Account{}, beacon_errors.ErrUnauthorized
	}
	if !a.IsActive {
		return account.Account{}, beacon_errors.ErrAccountInactive
	}
	return a, nil
}

func (s *AuthService) recordFailure(ctx context.Context, a account.Account) error {
	attempts := a.FailedLoginAttempts + 1
	var lockedUntil *time.Time
	if attempts >= s.maxFailedLogins {
		until := time.Now().Add(s.lockoutDuration)
		lockedUntil = &until
	}
	return s.accountRepo.RecordFailedLogin(ctx, a.ID, attempts, lockedUntil)
}

func (s *AuthService) getByIdentity(ctx context.Context, identity string) (account.Account, error) {
	if strings.Contains(identity, "@") {
		return s.accountRepo.GetByEmail(ctx, identity)
	}
	return s.accountRepo.GetByUsername(ctx, identity)
}

func (s *AuthService) newAccessToken(a account.Account) (string, int64, error) {
	ttl := s.userTTL
	if a.Kind == account.KindAdmin {
		ttl = s.adminTTL
	}

	now := time.Now()
	claims := AccessClaims{
		AccountID: a.ID.String(),
		Kind:      a.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(ttl.Seconds()), nil
}

func validateRegister(in RegisterInput) error {
	if in.Username == "" || in.Email == "" || len(in.Password) < 8 {
		return beacon_errors.ErrInvalidInput
	}
	if !strings.Contains(in.Email, "@") {
		return beacon_errors.ErrInvalidInput
	}
	if in.Kind != "" && in.Kind != account.KindUser && in.Kind != account.KindAdmin {
		return beacon_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func toAccountInfo(a account.Account) AccountInfo {
	info := AccountInfo{
		ID:          a.ID.String(),
		Kind:        a.Kind,
		Username:    a.Username,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
	if a.Kind == account.KindAdmin {
		info.Role = a.Role
	}
	return info
}
