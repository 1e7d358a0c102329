package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	"go.uber.org/zap"
)

// ReportingRange returns the aggregate rows for the window ending at the
// requested month. Without an explicit months parameter the customer's
// configured window applies.
func (s *Server) ReportingRange(c *gin.Context) {
	key, err := keyFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	months := intQuery(c, "months", 0)
	if months <= 0 {
		cfg, err := s.configSvc.Resolve(c.Request.Context(), key)
		if err != nil && !errors.Is(err, configdomain.ErrNotFound) {
			AbortWithError(c, err)
			return
		}
		months = cfg.Window()
	}

	rows, err := s.metricsSvc.ListRange(c.Request.Context(), key.Customer, key.Month, months)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GenerateDeck assembles the report and streams the rendered deck. The
// artifact is spilled to a temp file that is removed on every exit path.
func (s *Server) GenerateDeck(c *gin.Context) {
	key, err := keyFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.reportSvc.Assemble(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	artifact, err := s.deck.Render(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("deck-%s.pdf", s.genID.Generate().String()))
	f, err := os.Create(path)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.log.Warn("removing deck artifact", zap.String("path", path), zap.Error(err))
		}
	}()

	if _, err := io.Copy(f, artifact); err != nil {
		f.Close()
		AbortWithError(c, err)
		return
	}
	if err := f.Close(); err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.pdf", key.Customer, key.Month.Label())
	c.FileAttachment(path, filename)
}
