package services

import (
	"strings"
	"testing"

	"finance-assistant/internal/config"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// PasswordServiceTestSuite defines the test suite for PasswordService
type PasswordServiceTestSuite struct {
	suite.Suite
	service PasswordServiceInterface
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		BCryptCost:        bcrypt.MinCost,
		PasswordMinLength: 8,
		RequireUppercase:  true,
		RequireLowercase:  true,
		RequireNumbers:    true,
	}
}

// SetupTest runs before each test
func (s *PasswordServiceTestSuite) SetupTest() {
	s.service = NewPasswordService(testSecurityConfig())
}

// TestPasswordServiceSuite runs the test suite
func TestPasswordServiceSuite(t *testing.T) {
	suite.Run(t, new(PasswordServiceTestSuite))
}

func (s *PasswordServiceTestSuite) TestValidatePassword_ValidPassword() {
	s.NoError(s.service.ValidatePassword("Secure123"))
}

func (s *PasswordServiceTestSuite) TestValidatePassword_TooShort() {
	err := s.service.ValidatePassword("Short1")
	s.ErrorIs(err, ErrPasswordTooShort)
	s.Contains(err.Error(), "minimum is 8 characters")
}

func (s *PasswordServiceTestSuite) TestValidatePassword_MissingUppercase() {
	s.ErrorIs(s.service.ValidatePassword("secure123"), ErrPasswordNoUppercase)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_MissingLowercase() {
	s.ErrorIs(s.service.ValidatePassword("SECURE123"), ErrPasswordNoLowercase)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_MissingNumber() {
	s.ErrorIs(s.service.ValidatePassword("SecurePass"), ErrPasswordNoNumber)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_SpecialCharOptionalByDefault() {
	s.NoError(s.service.ValidatePassword("Secure123"))

	cfg := testSecurityConfig()
	cfg.RequireSpecialChars = true
	strict := NewPasswordService(cfg)
	s.ErrorIs(strict.ValidatePassword("Secure123"), ErrPasswordNoSpecial)
	s.NoError(strict.ValidatePassword("Secure123!"))
}

func (s *PasswordServiceTestSuite) TestValidatePassword_Empty() {
	s.ErrorIs(s.service.ValidatePassword(""), ErrPasswordEmpty)
}

func (s *PasswordServiceTestSuite) TestValidatePassword_TooLong() {
	s.ErrorIs(s.service.ValidatePassword(strings.Repeat("Aa1", 25)), ErrPasswordTooLong)
}

func (s *PasswordServiceTestSuite) TestNewPasswordService_DefaultsInvalidSettings() {
	svc := NewPasswordService(config.SecurityConfig{BCryptCost: 99})
	s.ErrorIs(svc.ValidatePassword("short"), ErrPasswordTooShort)
	s.NoError(svc.ValidatePassword("longenough"))
}

func (s *PasswordServiceTestSuite) TestHashPassword_ValidPassword() {
	hash, err := s.service.HashPassword("Secure123")
	s.NoError(err)
	s.NotEqual("Secure123", hash)
	s.True(strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$"))
}

func (s *PasswordServiceTestSuite) TestHashPassword_InvalidPassword() {
	hash, err := s.service.HashPassword("short")
	s.Error(err)
	s.True(IsPasswordPolicyError(err))
	s.Empty(hash)
}

func (s *PasswordServiceTestSuite) TestComparePassword() {
	hash, err := s.service.HashPassword("Secure123")
	s.Require().NoError(err)

	s.True(s.service.ComparePassword("Secure123", hash))
	s.False(s.service.ComparePassword("secure123", hash))
	s.False(s.service.ComparePassword("", hash))
	s.False(s.service.ComparePassword("Secure123", "invalid-hash"))
	s.False(s.service.ComparePassword("Secure123", ""))
}

func (s *PasswordServiceTestSuite) TestHashUniqueness() {
	hash1, err := s.service.HashPassword("Secure123")
	s.Require().NoError(err)
	hash2, err := s.service.HashPassword("Secure123")
	s.Require().NoError(err)

	// Hashes should be different due to salting
	s.NotEqual(hash1, hash2)
	s.True(s.service.ComparePassword("Secure123", hash1))
	s.True(s.service.ComparePassword("Secure123", hash2))
}

func (s *PasswordServiceTestSuite) TestIsPasswordPolicyError() {
	s.False(IsPasswordPolicyError(nil))
	s.False(IsPasswordPolicyError(ErrInvalidToken))
	s.True(IsPasswordPolicyError(ErrPasswordNoNumber))
}
