package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
)

func (s *Server) GetConfig(c *gin.Context) {
	key, err := keyFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var record *configdomain.ConfigRecord
	if c.Query("resolve") == "1" {
		record, err = s.configSvc.Resolve(c.Request.Context(), key)
	} else {
		record, err = s.configSvc.Get(c.Request.Context(), key)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

type saveConfigRequest struct {
	Customer string `json:"customer"`
	Month    string `json:"month"`

	CustomerFullName string `json:"customer_full_name"`
	CSMPrimary       string `json:"csm_primary"`
	CSMSecondary     string `json:"csm_secondary"`
	Environments     int    `json:"no_of_environments"`
	WindowMonths     int    `json:"no_of_months"`
	CustomerNote     string `json:"customer_note"`
	NewCustomerUID   string `json:"new_customer_uid"`

	AvailabilityRules string `json:"color_map_thresholds_availability"`
	UsersRules        string `json:"color_map_thresholds_users"`
	StorageRules      string `json:"color_map_thresholds_storage"`
	IndicatorColors   string `json:"indicator_color_code_rules"`
	CircleColors      string `json:"circle_color_code_rules"`
	AvailabilityNotes string `json:"notes_availability"`
	UsersNotes        string `json:"notes_users"`
	StorageNotes      string `json:"notes_storage"`
}

func (s *Server) SaveConfig(c *gin.Context) {
	var req saveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.configSvc.Upsert(c.Request.Context(), configdomain.UpsertRequest{
		Key:              key,
		CustomerFullName: req.CustomerFullName,
		CSMPrimary:       req.CSMPrimary,
		CSMSecondary:     req.CSMSecondary,
		Environments:     req.Environments,
		WindowMonths:     req.WindowMonths,
		CustomerNote:     req.CustomerNote,
		NewCustomerUID:   req.NewCustomerUID,

		AvailabilityRules: req.AvailabilityRules,
		UsersRules:        req.UsersRules,
		StorageRules:      req.StorageRules,
		IndicatorColors:   req.IndicatorColors,
		CircleColors:      req.CircleColors,
		AvailabilityNotes: req.AvailabilityNotes,
		UsersNotes:        req.UsersNotes,
		StorageNotes:      req.StorageNotes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
