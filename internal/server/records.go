package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
)

func (s *Server) GetRecord(c *gin.Context) {
	key, err := keyFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.metricsSvc.Get(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) CheckRecordExists(c *gin.Context) {
	key, err := keyFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	exists, err := s.metricsSvc.RecordExists(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

type insertRecordRequest struct {
	Mode     string `json:"mode"`
	Customer string `json:"customer"`
	Month    string `json:"month"`

	CSMPrimary   string `json:"csm_primary"`
	CSMSecondary string `json:"csm_secondary"`
	WindowMonths int    `json:"no_of_months"`
	Environments int    `json:"no_of_environments"`

	Values metricsdomain.TableValues `json:"values"`
}

func (s *Server) InsertRecord(c *gin.Context) {
	var req insertRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.metricsSvc.InsertRecord(c.Request.Context(), metricsdomain.InsertRequest{
		Mode:         strings.TrimSpace(req.Mode),
		Key:          key,
		CSMPrimary:   strings.TrimSpace(req.CSMPrimary),
		CSMSecondary: strings.TrimSpace(req.CSMSecondary),
		WindowMonths: req.WindowMonths,
		Environments: req.Environments,
		Values:       req.Values,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) DeleteRecord(c *gin.Context) {
	key, err := keyFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.metricsSvc.DeleteRecord(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"deleted_counts": result.Counts,
		"total":          result.Total,
	})
}
