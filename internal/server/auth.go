package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/healthdeck/healthdeck/internal/auth/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"username": result.Username,
	})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		_ = s.authsvc.Logout(c.Request.Context(), token)
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckSession reports validity without touching the activity timestamp, so
// the UI can poll it freely.
func (s *Server) CheckSession(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false, "remaining_seconds": 0})
		return
	}

	status := s.authsvc.Check(c.Request.Context(), token)
	if !status.Valid {
		s.sessions.Clear(c)
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":             status.Valid,
		"remaining_seconds": status.RemainingSeconds,
	})
}

type setFilterRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) SetFilter(c *gin.Context) {
	var req setFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.SetFilter(c.Request.Context(), sessionToken(c), strings.TrimSpace(req.Key), req.Value); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) GetFilters(c *gin.Context) {
	filters := s.authsvc.Filters(c.Request.Context(), sessionToken(c))
	if filters == nil {
		filters = map[string]string{}
	}
	c.JSON(http.StatusOK, gin.H{"data": filters})
}
