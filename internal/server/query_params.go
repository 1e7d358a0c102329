package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
)

const monthWindowDefault = configdomain.DefaultWindowMonths

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return def
	}
	return value
}
