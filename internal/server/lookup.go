package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthdeck/healthdeck/internal/month"
)

func (s *Server) ListCustomers(c *gin.Context) {
	customers, err := s.metricsSvc.ListCustomers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// PendingCustomers lists customers with configured months that carry no
// metric data yet.
func (s *Server) PendingCustomers(c *gin.Context) {
	customers, err := s.metricsSvc.PendingCustomers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customers})
}

func (s *Server) ListMonths(c *gin.Context) {
	customer := strings.TrimSpace(c.Query("customer"))
	if customer == "" {
		AbortWithError(c, newValidationError("customer", "invalid_customer", "customer is required"))
		return
	}

	months, err := s.metricsSvc.ListMonths(c.Request.Context(), customer)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": monthStrings(months)})
}

func (s *Server) PendingMonths(c *gin.Context) {
	customer := strings.TrimSpace(c.Query("customer"))
	if customer == "" {
		AbortWithError(c, newValidationError("customer", "invalid_customer", "customer is required"))
		return
	}

	months, err := s.metricsSvc.PendingMonths(c.Request.Context(), customer)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": monthStrings(months)})
}

func (s *Server) ListCSMs(c *gin.Context) {
	csms, err := s.metricsSvc.ListCSMs(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": csms})
}

func (s *Server) MonthsForCSM(c *gin.Context) {
	csm := strings.TrimSpace(c.Query("csm"))
	if csm == "" {
		AbortWithError(c, newValidationError("csm", "invalid_csm", "csm is required"))
		return
	}

	months, err := s.metricsSvc.MonthsForCSM(c.Request.Context(), csm)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": monthStrings(months)})
}

func (s *Server) RangeForCSM(c *gin.Context) {
	csm := strings.TrimSpace(c.Query("csm"))
	if csm == "" {
		AbortWithError(c, newValidationError("csm", "invalid_csm", "csm is required"))
		return
	}
	end, err := month.Parse(c.Query("month"))
	if err != nil {
		AbortWithError(c, newValidationError("month", "invalid_month", "invalid month"))
		return
	}
	months := intQuery(c, "months", monthWindowDefault)

	rows, err := s.metricsSvc.RangeForCSM(c.Request.Context(), csm, end, months)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func monthStrings(months []month.Month) []string {
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, m.String())
	}
	return out
}
