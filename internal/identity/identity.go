package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/ecfresh/internal/constants"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/otel"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPasswordMismatch = errors.New("password mismatch")
)

type Identity struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

// Provider is the identity collaborator consumed by the checkout
// orchestrator. All calls may be slow or fail; the orchestrator
// treats failures as best-effort and falls back to a guest sale.
type Provider interface {
	SignUp(c context.Context, email, password, displayName string) error
	SignIn(c context.Context, email, password string) error
	CurrentUser(c context.Context) (Identity, bool)
}

// Service is the postgres-backed Provider. The signed-in session is
// held in process: this storefront serves one shopper session at a
// time, the way the original client kept its auth state locally.
type Service struct {
	pool      *pgxpool.Pool
	secretKey string

	mu      sync.RWMutex
	session *Identity
	token   string
}

func NewService(pool *pgxpool.Pool, secretKey string) *Service {
	return &Service{pool: pool, secretKey: secretKey}
}

func (s *Service) SignUp(c context.Context, email, password, displayName string) error {
	c, span := otel.Tracer.Start(c, "IdentityService SignUp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "IdentityService SignUp").
		Str(log.KeyEmail, email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Info().Msg("inserting user")
	_, err = s.pool.Exec(
		c,
		`insert into users (id, email, password, display_name) values ($1, $2, $3, $4)`,
		uuid.New(),
		email,
		string(hashed),
		displayName,
	)
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("inserted user")

	return nil
}

func (s *Service) SignIn(c context.Context, email, password string) error {
	c, span := otel.Tracer.Start(c, "IdentityService SignIn")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "IdentityService SignIn").
		Str(log.KeyEmail, email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by email")
	var (
		id          uuid.UUID
		displayName string
		hashed      string
	)
	row := s.pool.QueryRow(
		c,
		`select id, display_name, password from users where email = $1`,
		email,
	)
	if err := row.Scan(&id, &displayName, &hashed); err != nil {
		err = errors.Join(err, ErrUserNotFound)
		logger.Error().Err(err).Msgf("failed finding user by email=%s", email)
		return err
	}
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Info().Msg("verifying hashed password with password")
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		logger.Error().Err(ErrPasswordMismatch).Msg(ErrPasswordMismatch.Error())
		return ErrPasswordMismatch
	}
	logger.Info().Msg("verified hashed password with password")

	logger = logger.With().Str(log.KeyProcess, "creating session token").Logger()
	logger.Info().Msg("creating session token")
	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Issuer:    constants.AppStorefront,
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	)
	signedToken, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("created session token")

	s.mu.Lock()
	s.session = &Identity{ID: id, Email: email, DisplayName: displayName}
	s.token = signedToken
	s.mu.Unlock()

	return nil
}

func (s *Service) CurrentUser(_ context.Context) (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Identity{}, false
	}
	return *s.session, true
}

func (s *Service) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.token = ""
}
