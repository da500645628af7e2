package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"droscher.com/DinnerGargoyle/configs"
	"droscher.com/DinnerGargoyle/pkg/model"
	"droscher.com/DinnerGargoyle/pkg/repository"
)

type UserKey struct{}

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

type userRepository interface {
	GetUserByUUID(ctx context.Context, userUUID uuid.UUID) (*model.User, error)
	AddUser(ctx context.Context, userUUID uuid.UUID, username string, email string) (*model.User, error)
}

type Manager struct {
	conf   *configs.Config
	repo   userRepository
	logger *zap.Logger
}

func NewAuthManager(conf *configs.Config, repo userRepository, logger *zap.Logger) *Manager {
	return &Manager{conf: conf, repo: repo, logger: logger}
}

// Middleware authenticates the bearer token and puts the resolved user on
// the request context. Unknown subjects are provisioned on first sight.
func (a *Manager) Middleware() gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		claims, err := a.parseToken(ginCtx.GetHeader("Authorization"))
		if err != nil {
			a.logger.Error("error authenticating request", zap.Error(err))
			ginCtx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		user, err := a.resolveUser(ginCtx.Request.Context(), claims)
		if err != nil {
			a.logger.Error("error resolving user", zap.Error(err))
			ginCtx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		ctx := context.WithValue(ginCtx.Request.Context(), UserKey{}, user)
		ginCtx.Request = ginCtx.Request.WithContext(ctx)
		ginCtx.Next()
	}
}

// UserFromContext returns the authenticated user placed by Middleware.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserKey{}).(*model.User)

	return user, ok
}

func (a *Manager) parseToken(authorization string) (jwt.MapClaims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}

		return []byte(a.conf.Auth.SecretKey), nil
	}

	accessToken, err := extractTokenFromHeader(authorization)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(accessToken, jwt.MapClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	claims, found := token.Claims.(jwt.MapClaims)
	if !found || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (a *Manager) resolveUser(ctx context.Context, claims jwt.MapClaims) (*model.User, error) {
	subject, found := claims["sub"].(string)
	if !found {
		return nil, errors.New("token has no subject")
	}

	userUUID, err := uuid.Parse(subject)
	if err != nil {
		return nil, err
	}

	user, err := a.repo.GetUserByUUID(ctx, userUUID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	username, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	a.logger.Info("provisioning first-seen user", zap.String("uuid", userUUID.String()))

	return a.repo.AddUser(ctx, userUUID, username, email)
}

func extractTokenFromHeader(authorization string) (string, error) {
	if len(authorization) == 0 {
		return "", errors.New("authorization header not found")
	}

	prefix := "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		prefix = "bearer "
	}

	token, found := strings.CutPrefix(authorization, prefix)
	if !found {
		return "", errors.New("authorization format must be Bearer {token}")
	}

	return token, nil
}
