package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthdeck/healthdeck/internal/month"
)

const (
	contextUsernameKey = "username"
	contextTokenKey    = "session_token"
)

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		// A full page reload discards the filters the user had selected.
		if c.Query("reload") == "1" {
			_ = s.authsvc.ClearFilters(c.Request.Context(), token)
		}

		c.Set(contextUsernameKey, session.Username)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	return c.GetString(contextTokenKey)
}

func keyFromQuery(c *gin.Context) (month.Key, error) {
	customer := strings.TrimSpace(c.Query("customer"))
	if customer == "" {
		return month.Key{}, newValidationError("customer", "invalid_customer", "customer is required")
	}
	m, err := month.Parse(c.Query("month"))
	if err != nil {
		return month.Key{}, newValidationError("month", "invalid_month", "invalid month")
	}
	return month.NewKey(customer, m), nil
}

func keyFromRequest(customer, rawMonth string) (month.Key, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return month.Key{}, newValidationError("customer", "invalid_customer", "customer is required")
	}
	m, err := month.Parse(rawMonth)
	if err != nil {
		return month.Key{}, newValidationError("month", "invalid_month", "invalid month")
	}
	return month.NewKey(customer, m), nil
}
