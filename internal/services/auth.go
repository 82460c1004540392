package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fahad04code/Bakbak-bot/internal/data/repos"
	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

const (
	minRegistrationAge = 5
	maxRegistrationAge = 120
)

// RegisterInput is the registration payload. Phone is the identity: a second
// registration with the same phone replaces the stored profile.
type RegisterInput struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	AdminPassword string `json:"admin_password"`
}

// JWTClaims is the session token payload. Subject carries the phone.
type JWTClaims struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, string, error)
	SessionFromToken(ctx context.Context, tokenString string) (context.Context, error)
	SessionTTL() time.Duration
}

type authService struct {
	log             *logger.Logger
	userRepo        repos.UserRepo
	adminPassphrase string
	jwtSecretKey    string
	sessionTTL      time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, adminPassphrase string, jwtSecretKey string, sessionTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	if adminPassphrase == "" {
		serviceLog.Warn("Admin passphrase empty; no registration can become admin")
	}
	return &authService{
		log:             serviceLog,
		userRepo:        userRepo,
		adminPassphrase: adminPassphrase,
		jwtSecretKey:    jwtSecretKey,
		sessionTTL:      sessionTTL,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, string, error) {
	ctx = ctxutil.Default(ctx)

	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	gender := strings.TrimSpace(in.Gender)
	if name == "" || phone == "" || gender == "" {
		return nil, "", fmt.Errorf("%w: name, phone and gender are required", apperr.ErrValidation)
	}
	if in.Age < minRegistrationAge || in.Age > maxRegistrationAge {
		return nil, "", fmt.Errorf("%w: age must be between %d and %d", apperr.ErrValidation, minRegistrationAge, maxRegistrationAge)
	}

	isAdmin := as.adminPassphrase != "" && in.AdminPassword == as.adminPassphrase
	user := &types.User{
		Phone:     phone,
		Name:      name,
		Age:       in.Age,
		Gender:    gender,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := as.userRepo.Upsert(ctx, nil, []*types.User{user}); err != nil {
		return nil, "", fmt.Errorf("%w: saving user: %v", apperr.ErrStorage, err)
	}

	token, err := as.generateSessionToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generating session token: %w", err)
	}
	as.log.Info("User registered", "phone", phone, "is_admin", isAdmin)
	return user, token, nil
}

func (as *authService) generateSessionToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Name:  user.Name,
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Phone,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SessionFromToken validates the token and returns ctx with the session
// attached. The caller keeps the original ctx on error.
func (as *authService) SessionFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	ctx = ctxutil.Default(ctx)
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", apperr.ErrUnauthorized)
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: parsing token: %v", apperr.ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", apperr.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return ctx, fmt.Errorf("%w: token has no subject", apperr.ErrUnauthorized)
	}

	return ctxutil.WithSessionData(ctx, &ctxutil.SessionData{
		Phone:   claims.Subject,
		Name:    claims.Name,
		IsAdmin: claims.Admin,
	}), nil
}

func (as *authService) SessionTTL() time.Duration {
	return as.sessionTTL
}
