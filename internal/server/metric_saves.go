package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
)

type saveAvailabilityRequest struct {
	Customer     string  `json:"customer"`
	Month        string  `json:"month"`
	Availability float64 `json:"updated_availability"`
	Target       float64 `json:"updated_target"`
}

func (s *Server) SaveAvailability(c *gin.Context) {
	var req saveAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.metricsSvc.SaveAvailability(c.Request.Context(), key, req.Availability, req.Target); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type saveUsersRequest struct {
	Customer string `json:"customer"`
	Month    string `json:"month"`
	metricsdomain.UsersInput
}

func (s *Server) SaveUsers(c *gin.Context) {
	var req saveUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	warnings, err := s.metricsSvc.SaveUsers(c.Request.Context(), key, req.UsersInput)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	resp := gin.H{"success": true}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

type saveStorageRequest struct {
	Customer string `json:"customer"`
	Month    string `json:"month"`
	metricsdomain.StorageInput
}

func (s *Server) SaveStorage(c *gin.Context) {
	var req saveStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.metricsSvc.SaveStorage(c.Request.Context(), key, req.StorageInput); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type saveTicketsRequest struct {
	Customer string `json:"customer"`
	Month    string `json:"month"`
	metricsdomain.TicketsInput
}

func (s *Server) SaveTickets(c *gin.Context) {
	var req saveTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.metricsSvc.SaveTickets(c.Request.Context(), key, req.TicketsInput); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
