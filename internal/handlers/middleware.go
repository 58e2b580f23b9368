package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const operatorCtx = "operatorId"

var (
	errNoAuthHeader  = errors.New("missing Authorization header")
	errAuthScheme    = errors.New("invalid Authorization header format")
	errOperatorToken = errors.New("invalid or expired token")
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errNoAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", errAuthScheme
	}
	return strings.TrimSpace(token), nil
}

// operatorIdentity guards the operator API: only a signed-in operator may
// read the crossing log or force a poll. The operator id is stored in the
// gin context for the handlers that follow.
func (h *Handler) operatorIdentity(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err == nil {
		var operatorID int
		if operatorID, err = h.services.ParseToken(token); err == nil {
			if h.log != nil {
				h.log.Debugw("operator_authenticated", "operator", operatorID, "path", c.FullPath())
			}
			c.Set(operatorCtx, operatorID)
			c.Next()
			return
		}
		if h.log != nil {
			h.log.Infow("operator_token_rejected", "path", c.FullPath(), "remote", c.ClientIP(), "err", err)
		}
		err = errOperatorToken
	} else if h.log != nil {
		h.log.Infow("operator_request_rejected", "path", c.FullPath(), "remote", c.ClientIP(), "reason", err.Error())
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}

// operatorFrom returns the operator id set by operatorIdentity.
func operatorFrom(c *gin.Context) (int, bool) {
	v, ok := c.Get(operatorCtx)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}
