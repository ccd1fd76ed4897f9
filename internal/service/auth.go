package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfdesk/backend/internal/config"
	"github.com/pdfdesk/backend/internal/db"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/pdfdesk/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshCookieName = "refreshToken"
	ResetTokenTTL     = 10 * time.Minute
)

// UserStore is the credential store contract. Absent records are reported
// as db.ErrNotFound.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) (*model.User, error)
	UpdatePasswordByEmailAndRole(ctx context.Context, email string, role model.Role, update model.PasswordUpdate) error
	UpdateStatusByID(ctx context.Context, id string, status model.Status) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// Notifier delivers a password reset link to a user.
type Notifier interface {
	Send(ctx context.Context, email, resetLink string) error
}

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// AuthSettings is built once from config.AuthConfig and never mutated.
type AuthSettings struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	ResetUILink   string
	Cookie        CookieConfig
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users    UserStore
	notifier Notifier
	codec    *token.Codec
	settings AuthSettings
	logger   *slog.Logger
	now      func() time.Time
}

type AuthOption func(*AuthService)

// WithClock drives token issuing, expiry checks and password-change
// timestamps from the same clock.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
		s.codec = token.NewCodec(token.WithClock(now))
	}
}

func WithLogger(logger *slog.Logger) AuthOption {
	return func(s *AuthService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewAuthService(users UserStore, notifier Notifier, cfg config.AuthConfig, opts ...AuthOption) (*AuthService, error) {
	settings, err := ParseAuthSettings(cfg)
	if err != nil {
		return nil, err
	}

	s := &AuthService{
		users:    users,
		notifier: notifier,
		codec:    token.NewCodec(),
		settings: settings,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func ParseAuthSettings(cfg config.AuthConfig) (AuthSettings, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return AuthSettings{}, fmt.Errorf("%w: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return AuthSettings{}, fmt.Errorf("%w: access and refresh secrets must differ", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTTL)
	if err != nil || accessTTL <= 0 {
		return AuthSettings{}, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(cfg.RefreshTTL)
	if err != nil || refreshTTL <= 0 {
		return AuthSettings{}, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	cost := bcrypt.DefaultCost
	if strings.TrimSpace(cfg.BcryptCost) != "" {
		cost, err = strconv.Atoi(strings.TrimSpace(cfg.BcryptCost))
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return AuthSettings{}, fmt.Errorf("%w: invalid BCRYPT_COST", ErrMisconfigured)
		}
	}

	if _, err := url.ParseRequestURI(cfg.ResetUILink); err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid RESET_PASSWORD_UI_LINK", ErrMisconfigured)
	}

	cookieSecure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return AuthSettings{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return AuthSettings{}, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cfg.CookiePath
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return AuthSettings{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		BcryptCost:    cost,
		ResetUILink:   cfg.ResetUILink,
		Cookie: CookieConfig{
			Name:     refreshCookieName,
			Path:     cookiePath,
			Domain:   cfg.CookieDomain,
			Secure:   cookieSecure,
			SameSite: cookieSameSite,
			MaxAge:   int(refreshTTL.Seconds()),
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.settings.Cookie
}

// EnsureAdmin seeds an admin account when none exists for email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: ADMIN_EMAIL/ADMIN_PASSWORD are required", ErrMisconfigured)
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.users.Insert(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	})
	if errors.Is(err, db.ErrDuplicateEmail) {
		return nil
	}
	return err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.activeUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	claims := token.Claims{Email: user.Email, Role: string(user.Role)}

	accessToken, err := s.codec.Issue(claims, s.settings.AccessSecret, s.settings.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.codec.Issue(claims, s.settings.RefreshSecret, s.settings.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, identity model.Identity, oldPassword, newPassword string) error {
	user, err := s.activeUser(ctx, identity.Email)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrBadCredentials
	}

	return s.storePassword(ctx, identity.Email, identity.Role, newPassword)
}

// RefreshAccessToken mints a new access token. The refresh token itself is
// not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Verify(refreshToken, s.settings.RefreshSecret)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.Email)
	if err != nil {
		return "", err
	}

	if issuedBeforePasswordChange(user, claims.IssuedAt) {
		return "", ErrPasswordChanged
	}

	accessToken, err := s.codec.Issue(token.Claims{Email: user.Email, Role: string(user.Role)}, s.settings.AccessSecret, s.settings.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return accessToken, nil
}

// ForgotPassword hands exactly one reset link to the notifier before
// returning. Delivery is best-effort: a notifier failure is logged only.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.activeUser(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.codec.Issue(token.Claims{Email: user.Email, Role: string(user.Role)}, s.settings.AccessSecret, ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	link, err := buildResetLink(s.settings.ResetUILink, user.Email, resetToken)
	if err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, user.Email, link); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset link", "email", user.Email, "error", err)
		return nil
	}
	s.logger.InfoContext(ctx, "password reset link sent", "email", user.Email)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, resetToken string) error {
	if _, err := s.activeUser(ctx, email); err != nil {
		return err
	}

	claims, err := s.codec.Verify(ExtractToken(resetToken), s.settings.AccessSecret)
	if err != nil {
		return ErrInvalidToken
	}

	if claims.Email != email {
		return ErrInvalidToken
	}

	// The update is keyed by the role in the token; a role changed since
	// issue matches no row.
	err = s.storePassword(ctx, claims.Email, model.Role(claims.Role), newPassword)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidToken
	}
	return err
}

// authenticate verifies an access token and re-checks the account.
func (s *AuthService) authenticate(ctx context.Context, accessToken string) (*model.Identity, error) {
	claims, err := s.codec.Verify(accessToken, s.settings.AccessSecret)
	if err != nil {
		if token.IsExpired(err) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	if issuedBeforePasswordChange(user, claims.IssuedAt) {
		return nil, ErrPasswordChanged
	}

	return &model.Identity{
		Email:    claims.Email,
		Role:     model.Role(claims.Role),
		IssuedAt: claims.IssuedAt,
	}, nil
}

// activeUser is the preamble shared by every auth operation.
func (s *AuthService) activeUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, ErrUserDeleted
	}
	if user.Status == model.StatusBlocked {
		return nil, ErrUserBlocked
	}
	return user, nil
}

func (s *AuthService) storePassword(ctx context.Context, email string, role model.Role, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	err = s.users.UpdatePasswordByEmailAndRole(ctx, email, role, model.PasswordUpdate{
		PasswordHash:      hash,
		PasswordChangedAt: s.now(),
	})
	if db.IsNoRows(err) {
		return ErrUserNotFound
	}
	return err
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.settings.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrInvalidInput
		}
		return "", err
	}
	return string(hash), nil
}

// issuedBeforePasswordChange compares the full-precision change time with
// the whole-second iat claim, so a change later in the same second still
// invalidates the token.
func issuedBeforePasswordChange(user *model.User, issuedAt time.Time) bool {
	if user.PasswordChangedAt == nil {
		return false
	}
	return user.PasswordChangedAt.After(time.Unix(issuedAt.Unix(), 0))
}

// ExtractToken accepts both "Bearer <token>" and a bare token.
func ExtractToken(header string) string {
	parts := strings.Fields(header)
	switch {
	case len(parts) == 1 && !strings.EqualFold(parts[0], "Bearer"):
		return parts[0]
	case len(parts) == 2 && strings.EqualFold(parts[0], "Bearer"):
		return parts[1]
	}
	return ""
}

func buildResetLink(base, email, resetToken string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid RESET_PASSWORD_UI_LINK", ErrMisconfigured)
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("token", resetToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteLaxMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, ErrInvalidInput
	}
}
