package middlewares

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wasnasmay/altess-final-sub004/src/config"
	"github.com/wasnasmay/altess-final-sub004/src/types"
)

const RoleAdmin = "admin"

func parseBearer(ctx *gin.Context) (*types.Claims, error) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
	if !ok || reqToken == "" {
		return nil, errors.New("missing bearer token")
	}
	// HMAC accepts an empty key, so an unset secret would let anyone mint tokens.
	secret := config.JWTSecret()
	if len(secret) == 0 {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthMiddleware accepts any valid platform token.
func AuthMiddleware(ctx *gin.Context) {
	claims, err := parseBearer(ctx)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx.Set("sub", claims.Subject)
	ctx.Set("role", claims.Role)
	ctx.Set("permissions", claims.Permissions)
}

// AdminMiddleware only lets platform administrators through.
func AdminMiddleware(ctx *gin.Context) {
	AuthMiddleware(ctx)
	if ctx.IsAborted() {
		return
	}
	if ctx.GetString("role") != RoleAdmin && !slices.Contains(ctx.GetStringSlice("permissions"), "tickets:notify") {
		log.Printf("Forbidden: %s is not an admin\n", ctx.GetString("sub"))
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
}
