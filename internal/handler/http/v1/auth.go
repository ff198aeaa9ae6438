package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_assistant/internal/auth"
	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/shenikar/incident_assistant/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenCookie  = "incident_access_token"
	RefreshTokenCookie = "incident_refresh_token"

	currentUserKey = "currentUser"
)

// SessionMiddleware - middleware, определяющий текущего пользователя по токенам запроса.
// Если access токен был перевыпущен, новые токены записываются в куки ответа.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := service.Credentials{
			AccessToken:  accessTokenFromRequest(c),
			RefreshToken: cookieValue(c, RefreshTokenCookie),
		}

		session, err := h.authService.ResolveSession(c.Request.Context(), creds)
		if err != nil {
			status := abortWithError(c, err)
			entry := h.logger.WithField("method", "SessionMiddleware").WithError(err)
			if status >= http.StatusInternalServerError {
				entry.Error("Failed to resolve session")
			} else {
				entry.Warn("Session rejected")
			}
			return
		}

		if session.Renewed != nil {
			h.setAuthCookies(c, session.Renewed)
			h.authEvent("refresh")
		}

		c.Set(currentUserKey, session.User)
		c.Next()
	}
}

// RequireAdmin пропускает только пользователей с ролью admin.
// Используется после SessionMiddleware.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !user.IsAdmin() {
			h.logger.WithField("method", "RequireAdmin").Warn("Admin role required")
			abortWithError(c, service.ErrAdminRequired)
			return
		}
		c.Next()
	}
}

// @Summary Register a new user
// @Description Create a user account. Role defaults to operator.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 409 {object} ErrorResponse "User already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	log := h.logger.WithField("method", "register")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	// max в теге валидатора считает символы, bcrypt ограничен байтами
	if len(input.Password) > auth.MaxPasswordBytes {
		log.Warn("Password exceeds bcrypt limit")
		abortWithError(c, auth.ErrPasswordTooLong)
		return
	}

	_, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Role:     models.Role(input.Role),
	})
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		abortWithError(c, err)
		return
	}

	h.authEvent("register")
	c.JSON(http.StatusOK, MessageResponse{Message: "user created"})
}

// @Summary Log in
// @Description Authenticate by email and password. Tokens are set as http-only cookies and returned in the body.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login request"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Wrong password"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	_, pair, err := h.authService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.authEvent("login_failed")
		log.WithError(err).Warn("Login failed")
		abortWithError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	h.authEvent("login")
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// @Summary Log out
// @Description Clear both auth cookies and revoke the refresh token
// @Tags Auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	log := h.logger.WithField("method", "logout")

	h.clearAuthCookies(c)
	if err := h.authService.Logout(c.Request.Context(), cookieValue(c, RefreshTokenCookie)); err != nil {
		log.WithError(err).Error("Failed to revoke refresh token")
		abortWithError(c, err)
		return
	}

	h.authEvent("logout")
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, ModelToUserResponse(currentUser(c)))
}

// @Summary List users
// @Description Admin only
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Number of users to skip" default(0)
// @Param limit query int false "Maximum number of users" default(100)
// @Success 200 {array} UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Insufficient permissions"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	log := h.logger.WithFields(logrus.Fields{
		"method":   "listUsers",
		"admin_id": currentUser(c).ID,
	})

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid skip parameter"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit parameter"})
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToUserResponses(users))
}

// currentUser возвращает пользователя, сохраненного SessionMiddleware
func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// accessTokenFromRequest берет токен из куки, иначе из заголовка Authorization: Bearer
func accessTokenFromRequest(c *gin.Context) string {
	if token := cookieValue(c, AccessTokenCookie); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func cookieValue(c *gin.Context, name string) string {
	value, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return value
}

// Обе куки живут столько же, сколько refresh токен: истекший access токен
// должен дойти до сервера, чтобы его можно было обновить.
func (h *Handler) setAuthCookies(c *gin.Context, pair *service.TokenPair) {
	maxAge := int(h.cfg.RefreshTokenTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, pair.AccessToken, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

func (h *Handler) authEvent(event string) {
	if h.metrics != nil {
		h.metrics.AuthEvent(event)
	}
}
