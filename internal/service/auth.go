package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/obsidianatelier/storefront/internal/logging"
	"github.com/obsidianatelier/storefront/internal/mail"
	"github.com/obsidianatelier/storefront/internal/models"
	"github.com/obsidianatelier/storefront/internal/repo"
	"github.com/obsidianatelier/storefront/internal/tokens"
)

const (
	codeTTL  = 10 * time.Minute
	tokenTTL = 24 * time.Hour

	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type AuthService struct {
	Repo        *repo.GormRepo
	Mailer      mail.Mailer
	JWTSecret   []byte
	AdminEmails []string
}

type VerifyResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RequestCode mails a six-digit sign-in code. Only the bcrypt hash of the
// code is stored; the code expires after ten minutes.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email address is required", ErrValidation)
	}

	code, err := randomCode()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	record := &models.LoginCode{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().UTC().Add(codeTTL),
	}
	if err := s.Repo.CreateLoginCode(ctx, record); err != nil {
		return err
	}

	text := fmt.Sprintf("Your sign-in code is %s. It expires in 10 minutes.", code)
	html := fmt.Sprintf("<p>Your sign-in code is <strong>%s</strong>. It expires in 10 minutes.</p>", code)
	if err := s.Mailer.Send(email, "Your sign-in code", text, html); err != nil {
		logging.FromContext(ctx).Error("login_code_mail_failed", "email", email, "error", err)
		return fmt.Errorf("could not send sign-in code: %w", err)
	}
	return nil
}

// Verify checks the emailed code, creates the user on first sign-in and
// returns a bearer token. Codes are single use.
func (s *AuthService) Verify(ctx context.Context, email, code string) (*VerifyResult, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, fmt.Errorf("%w: email and code are required", ErrValidation)
	}

	record, err := s.Repo.LatestLoginCode(ctx, email, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid or expired code", ErrUnauthorized)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		return nil, fmt.Errorf("%w: invalid or expired code", ErrUnauthorized)
	}

	if err := s.Repo.ConsumeLoginCode(ctx, record.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid or expired code", ErrUnauthorized)
		}
		return nil, err
	}

	role := RoleCustomer
	for _, admin := range s.AdminEmails {
		if normalizeEmail(admin) == email {
			role = RoleAdmin
			break
		}
	}

	user, err := s.Repo.EnsureUser(ctx, email, role)
	if err != nil {
		return nil, err
	}

	token, err := tokens.NewAccessToken(user.ID.String(), user.Role, time.Now().Add(tokenTTL), s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
