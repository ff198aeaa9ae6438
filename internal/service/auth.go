package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/incident_assistant/internal/auth"
	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=auth.go -destination=mocks/mock_auth.go -package=mocks

// UserRepository определяет контракт для работы с бд пользователей
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindOneOrNone(ctx context.Context, filter models.Filter) (*models.User, error)
	Add(ctx context.Context, fields models.Fields) (*models.User, error)
	List(ctx context.Context, skip, limit int) ([]*models.User, error)
}

// SessionStore хранит идентификаторы отозванных refresh токенов до истечения их срока.
// Revoke атомарен: false означает, что токен уже был отозван раньше.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

// TokenPair - пара выпущенных токенов
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Credentials - токены, извлеченные из запроса
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Session - результат разрешения текущего пользователя.
// Renewed заполнен, если access токен был перевыпущен по refresh токену.
type Session struct {
	User    *models.User
	Renewed *TokenPair
}

// RegisterInput - данные для регистрации пользователя
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

// AuthService определяет контракт регистрации, входа и разрешения сессии
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ResolveSession(ctx context.Context, creds Credentials) (*Session, error)
	ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error)
}

type authService struct {
	users    UserRepository
	sessions SessionStore
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	logger   *logrus.Logger
}

func NewAuthService(users UserRepository, sessions SessionStore, tokens *auth.TokenManager, hasher *auth.PasswordHasher, logger *logrus.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register создает пользователя, если email еще не занят
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Register",
		"email":   input.Email,
	})
	log.Info("Attempting to register a new user")

	existing, err := s.users.FindOneOrNone(ctx, models.Filter{"email": input.Email})
	if err != nil {
		log.WithError(err).Error("Failed to look up user by email")
		return nil, fmt.Errorf("service: could not check user: %w", err)
	}
	if existing != nil {
		log.Warn("User with this email already exists")
		return nil, models.ErrUserExists
	}

	role := input.Role
	if role == "" {
		role = models.RoleOperator
	}
	if !role.Valid() {
		return nil, models.NewError(models.ErrValidation, "invalid role: "+string(role))
	}

	hashed, err := s.hasher.Hash(input.Password)
	if errors.Is(err, models.ErrValidation) {
		log.WithError(err).Warn("Password rejected")
		return nil, err
	}
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}

	user, err := s.users.Add(ctx, models.Fields{
		"email":           input.Email,
		"name":            input.Name,
		"role":            string(role),
		"hashed_password": hashed,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create user in repository")
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// AuthenticateUser возвращает пользователя при совпадении пароля и nil в любом другом случае
func (s *authService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindOneOrNone(ctx, models.Filter{"email": email})
	if err != nil {
		return nil, fmt.Errorf("service: could not authenticate user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.HashedPassword) {
		return nil, nil
	}
	return user, nil
}

// Login проверяет учетные данные и выпускает пару токенов.
// Неизвестный email дает ErrUserNotFound, неверный пароль - ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Login",
		"email":   email,
	})

	user, err := s.AuthenticateUser(ctx, email, password)
	if err != nil {
		log.WithError(err).Error("Failed to authenticate user")
		return nil, nil, err
	}
	if user == nil {
		existing, err := s.users.FindOneOrNone(ctx, models.Filter{"email": email})
		if err != nil {
			log.WithError(err).Error("Failed to look up user by email")
			return nil, nil, fmt.Errorf("service: could not check user: %w", err)
		}
		if existing == nil {
			log.Warn("Login attempt for unknown email")
			return nil, nil, models.ErrUserNotFound
		}
		log.Warn("Login attempt with wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		log.WithError(err).Error("Failed to issue tokens")
		return nil, nil, err
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	return user, pair, nil
}

// Logout отзывает refresh токен, если он еще действителен
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		// истекший или чужой токен отзывать не нужно
		return nil
	}
	if _, err := s.revoke(ctx, claims); err != nil {
		return fmt.Errorf("service: could not revoke refresh token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "Logout",
		"user_id": claims.Subject,
	}).Info("Refresh token revoked")
	return nil
}

// ResolveSession определяет текущего пользователя по токенам запроса.
// При недействительном access токене пробует refresh токен и, если он действителен,
// выпускает новую пару токенов, а старый refresh токен отзывает.
func (s *authService) ResolveSession(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.AccessToken == "" {
		return nil, ErrAuthRequired
	}

	claims, err := s.tokens.ParseAccessToken(creds.AccessToken)
	if err == nil {
		user, err := s.subjectUser(ctx, claims.Subject)
		if err != nil {
			return nil, err
		}
		return &Session{User: user}, nil
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "ResolveSession",
	})
	log.WithError(err).Debug("Access token rejected, trying refresh token")

	if creds.RefreshToken == "" {
		return nil, ErrTokenExpired
	}

	refreshClaims, err := s.tokens.ParseRefreshToken(creds.RefreshToken)
	if err != nil {
		log.WithError(err).Info("Refresh token rejected")
		return nil, ErrRefreshExpired
	}

	// Старый refresh токен отзывается до выпуска новой пары: из двух
	// параллельных запросов с одним токеном обновится только один
	claimed, err := s.revoke(ctx, refreshClaims)
	if err != nil {
		log.WithError(err).Error("Failed to revoke rotated refresh token")
		return nil, fmt.Errorf("service: could not revoke refresh token: %w", err)
	}
	if !claimed {
		log.WithField("user_id", refreshClaims.Subject).Warn("Revoked refresh token presented")
		return nil, ErrRefreshExpired
	}

	user, err := s.subjectUser(ctx, refreshClaims.Subject)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		log.WithError(err).Error("Failed to issue tokens")
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("Session tokens rotated")
	return &Session{User: user, Renewed: pair}, nil
}

// ListUsers возвращает пользователей с пагинацией
func (s *authService) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	skip, limit = normalizePage(skip, limit)

	users, err := s.users.List(ctx, skip, limit)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "auth",
			"method":  "ListUsers",
		}).WithError(err).Error("Failed to list users")
		return nil, fmt.Errorf("service: could not list users: %w", err)
	}
	return users, nil
}

func (s *authService) subjectUser(ctx context.Context, subject string) (*models.User, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(subject), 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrSessionUserNotFound
		}
		return nil, fmt.Errorf("service: could not load session user: %w", err)
	}
	return user, nil
}

func (s *authService) issueTokens(user *models.User) (*TokenPair, error) {
	subject := strconv.FormatInt(user.ID, 10)
	access, err := s.tokens.CreateAccessToken(subject)
	if err != nil {
		return nil, fmt.Errorf("service: could not create access token: %w", err)
	}
	refresh, err := s.tokens.CreateRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("service: could not create refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// minRevokeTTL не дает передать в Redis нулевой срок для токена на грани истечения
const minRevokeTTL = time.Second

func (s *authService) revoke(ctx context.Context, claims *auth.Claims) (bool, error) {
	ttl := s.tokens.RefreshTTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl < minRevokeTTL {
		ttl = minRevokeTTL
	}
	return s.sessions.Revoke(ctx, claims.ID, ttl)
}
