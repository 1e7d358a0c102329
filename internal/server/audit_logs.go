package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/healthdeck/healthdeck/internal/audit/domain"
)

func (s *Server) LatestAuditLogs(c *gin.Context) {
	entries, err := s.auditSvc.Latest(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) DownloadAuditLogs(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.auditSvc.ExportCSV(c.Request.Context(), &buf); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="audit_logs.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

type attachCommentRequest struct {
	Customer  string `json:"customer"`
	Month     string `json:"month"`
	Section   string `json:"section"`
	Operation string `json:"operation"`
	Comment   string `json:"comment"`
}

func (s *Server) AttachAuditComment(c *gin.Context) {
	var req attachCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	key, err := keyFromRequest(req.Customer, req.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	err = s.auditSvc.AttachComment(c.Request.Context(), auditdomain.AttachCommentRequest{
		Key:       key,
		Section:   strings.TrimSpace(req.Section),
		Operation: strings.TrimSpace(req.Operation),
		Comment:   req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
