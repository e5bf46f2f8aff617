package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authUseCase "github.com/checktick/surveyvault/internal/auth/usecase"
	apperrors "github.com/checktick/surveyvault/internal/errors"
	"github.com/checktick/surveyvault/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer credentials in
// the Authorization header.
//
// Credential format: "Bearer <client_id>:<secret>" where client_id is the
// client UUID and secret is the plain secret returned once at creation.
//
// The middleware:
//  1. Extracts the Bearer credential from the Authorization header (case-insensitive)
//  2. Splits it into client ID and plain secret
//  3. Validates the pair using clientUseCase.Authenticate()
//  4. Stores the authenticated client in the request context
//  5. Allows downstream handlers to access the client via GetClient()
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Unknown client or wrong secret → 401 Unauthorized
//   - Deactivated client → 403 Forbidden
func AuthenticationMiddleware(
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer credential (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		credential := authHeader[len(bearerPrefix):]
		clientIDStr, plainSecret, found := strings.Cut(credential, ":")
		if !found || clientIDStr == "" || plainSecret == "" {
			logger.Debug("authentication failed: malformed bearer credential")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			logger.Debug("authentication failed: invalid client id")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		client, err := clientUseCase.Authenticate(c.Request.Context(), clientID, plainSecret)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store authenticated client in context
		ctx := WithClient(c.Request.Context(), client)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("client_id", client.ID.String()),
			slog.String("client_name", client.Name))

		c.Next()
	}
}
