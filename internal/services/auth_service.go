package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finance-assistant/internal/dto"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrAccountInactive     = errors.New("account is not active")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Blacklist lifetime for access tokens whose own expiry cannot be read.
const fallbackBlacklistTTL = 24 * time.Hour

// AuthService owns the session lifecycle: sign-up, sign-in, refresh rotation and logout.
type AuthService struct {
	users       repositories.UserRepositoryInterface
	sessions    repositories.RefreshTokenRepositoryInterface
	auditLogs   repositories.AuditLogRepositoryInterface
	revocations repositories.BlacklistedTokenRepositoryInterface
	passwords   PasswordServiceInterface
	tokens      TokenServiceInterface
	metrics     MetricsRecorderInterface
	logger      *slog.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AuthServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:       userRepo,
		sessions:    refreshTokenRepo,
		auditLogs:   auditRepo,
		revocations: blacklistedTokenRepo,
		passwords:   passwordService,
		tokens:      tokenService,
		metrics:     metrics,
		logger:      logger,
	}
}

// client identifies where an auth request came from, for the audit trail.
type client struct {
	ip    string
	agent string
}

// authEvent is one row of the auth audit trail.
type authEvent struct {
	action   string
	userID   *uuid.UUID
	metadata map[string]interface{}
}

func succeeded(action string, userID uuid.UUID) authEvent {
	return authEvent{action: action, userID: &userID}
}

func failed(action, reason string, extra map[string]interface{}) authEvent {
	metadata := map[string]interface{}{"reason": reason}
	for k, v := range extra {
		metadata[k] = v
	}
	return authEvent{action: action, metadata: metadata}
}

// Register creates an ACTIVE user and returns a fresh session for them.
func (s *AuthService) Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	from := client{ip: ipAddress, agent: userAgent}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.users.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		s.audit(from, failed(models.AuditActionRegister, "email_already_exists", map[string]interface{}{"email": email}))
		return nil, ErrUserAlreadyExists
	}

	picture, err := decodeProfilePicture(req.ProfilePicture)
	if err != nil {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Telephone:      strings.TrimSpace(req.Telephone),
		ProfilePicture: picture,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit(from, succeeded(models.AuditActionRegister, user.ID))
	s.count("register")
	return s.issueSession(user)
}

// Login checks credentials. Wrong passwords count towards the lockout
// threshold; a correct one clears the counter.
func (s *AuthService) Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	from := client{ip: ipAddress, agent: userAgent}

	user, err := s.users.GetByEmail(req.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, s.rejectLogin(from, req.Email, "user_not_found", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		return nil, s.rejectLogin(from, req.Email, "account_locked", ErrAccountLocked)
	}

	if !s.passwords.ComparePassword(req.Password, user.PasswordHash) {
		user.IncrementFailedAttempts()
		if err := s.users.UpdateFailedLoginAttempts(user); err != nil {
			s.logger.Error("failed to update login attempts", "error", err, "user_id", user.ID)
		}
		if user.IsLocked() {
			s.audit(from, succeeded(models.AuditActionAccountLocked, user.ID))
		}
		return nil, s.rejectLogin(from, req.Email, "invalid_password", ErrInvalidCredentials)
	}

	if user.Status != models.UserStatusActive {
		return nil, s.rejectLogin(from, req.Email, "account_inactive", ErrAccountInactive)
	}

	if err := s.users.ResetFailedLoginAttempts(user.ID); err != nil {
		s.logger.Warn("failed to reset login attempts", "error", err, "user_id", user.ID)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.audit(from, succeeded(models.AuditActionLogin, user.ID))
	s.count("login")
	return session, nil
}

func (s *AuthService) rejectLogin(from client, email, reason string, err error) error {
	s.audit(from, failed(models.AuditActionFailedLogin, reason, map[string]interface{}{"email": email}))
	s.count("login_failed")
	return err
}

// RefreshTokens exchanges a stored, unrevoked refresh token for a new pair
// and revokes the one presented.
func (s *AuthService) RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.AuthResponse, error) {
	from := client{ip: ipAddress, agent: userAgent}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.audit(from, failed(models.AuditActionTokenRefresh, "invalid_token", nil))
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	rejected := func(reason string) (*dto.AuthResponse, error) {
		event := failed(models.AuditActionTokenRefresh, reason, nil)
		event.userID = &userID
		s.audit(from, event)
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.sessions.GetByTokenHash(hashToken(refreshToken))
	if err != nil {
		return rejected("token_not_found")
	}
	if !stored.IsValid() || stored.UserID != userID {
		return rejected("token_expired_or_revoked")
	}

	user, err := s.users.GetByID(userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.sessions.Revoke(stored.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.audit(from, succeeded(models.AuditActionTokenRefresh, user.ID))
	s.count("token_refresh")
	return session, nil
}

// Logout blacklists the access token and revokes the given refresh token,
// or all of the user's refresh tokens when none is given. An access token
// that no longer validates is still blacklisted by its jti when readable.
func (s *AuthService) Logout(accessToken, refreshToken, ipAddress, userAgent string) error {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		if jti, _ := s.tokens.GetJTI(accessToken); jti != "" {
			s.revokeAccessToken(jti, uuid.Nil, time.Now().Add(fallbackBlacklistTTL))
		}
		return nil
	}

	userID, _ := uuid.Parse(claims.UserID)

	expiry, err := s.tokens.GetTokenExpiry(accessToken)
	if err != nil {
		expiry = time.Now().Add(fallbackBlacklistTTL)
	}
	s.revokeAccessToken(claims.ID, userID, expiry)
	s.endSessions(userID, refreshToken)

	s.audit(client{ip: ipAddress, agent: userAgent}, succeeded(models.AuditActionLogout, userID))
	s.count("logout")
	return nil
}

// CleanupExpiredTokens deletes refresh tokens and blacklist entries past their expiry.
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	sessions, err := s.sessions.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	revocations, err := s.revocations.DeleteExpired()
	if err != nil {
		return sessions, fmt.Errorf("failed to delete expired blacklisted tokens: %w", err)
	}
	return sessions + revocations, nil
}

func (s *AuthService) revokeAccessToken(jti string, userID uuid.UUID, expiresAt time.Time) {
	entry := &models.BlacklistedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	if err := s.revocations.Create(entry); err != nil {
		s.logger.Error("failed to blacklist token", "error", err, "jti", jti, "user_id", userID)
	}
}

func (s *AuthService) endSessions(userID uuid.UUID, refreshToken string) {
	if refreshToken != "" {
		stored, err := s.sessions.GetByTokenHash(hashToken(refreshToken))
		if err == nil && stored.UserID == userID {
			if err := s.sessions.Revoke(stored.ID); err != nil {
				s.logger.Warn("failed to revoke refresh token", "error", err, "user_id", userID)
			}
			return
		}
	}

	if err := s.sessions.RevokeAllForUser(userID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens", "error", err, "user_id", userID)
	}
}

// issueSession signs a token pair and stores the refresh token's hash.
func (s *AuthService) issueSession(user *models.User) (*dto.AuthResponse, error) {
	access, accessExpiry, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, refreshExpiry, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	stored := &models.RefreshToken{UserID: user.ID, TokenHash: hashToken(refresh), ExpiresAt: refreshExpiry}
	if err := s.sessions.Create(stored); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		Token:          access,
		RefreshToken:   refresh,
		TokenType:      "Bearer",
		ExpiresIn:      max(int64(time.Until(accessExpiry).Seconds()), 0),
		ExpiresAt:      accessExpiry,
		UserID:         user.ID.String(),
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		ProfilePicture: user.ProfilePictureBase64(),
	}, nil
}

// audit never fails the request; a failed write is only logged.
func (s *AuthService) audit(from client, event authEvent) {
	entry := &models.AuditLog{
		UserID:    event.userID,
		Action:    event.action,
		Resource:  models.AuditResourceAuth,
		IPAddress: from.ip,
		UserAgent: from.agent,
		Metadata:  event.metadata,
	}
	if event.userID != nil && event.metadata == nil {
		entry.ResourceID = event.userID.String()
	}

	if err := s.auditLogs.Create(entry); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "action", event.action)
	}
}

func (s *AuthService) count(event string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": event})
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
