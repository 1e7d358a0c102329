package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/healthdeck/healthdeck/internal/audit/domain"
	auditrepository "github.com/healthdeck/healthdeck/internal/audit/repository"
	auditservice "github.com/healthdeck/healthdeck/internal/audit/service"
	authservice "github.com/healthdeck/healthdeck/internal/auth/service"
	"github.com/healthdeck/healthdeck/internal/auth/session"
	"github.com/healthdeck/healthdeck/internal/clock"
	"github.com/healthdeck/healthdeck/internal/config"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	configrepository "github.com/healthdeck/healthdeck/internal/custconfig/repository"
	configservice "github.com/healthdeck/healthdeck/internal/custconfig/service"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
	metricsrepository "github.com/healthdeck/healthdeck/internal/metrics/repository"
	metricsservice "github.com/healthdeck/healthdeck/internal/metrics/service"
	"github.com/healthdeck/healthdeck/internal/month"
	"github.com/healthdeck/healthdeck/internal/providers/deck"
	reportservice "github.com/healthdeck/healthdeck/internal/report/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T, name string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&configdomain.ConfigRecord{},
		&metricsdomain.AggregateRecord{},
		&metricsdomain.AvailabilityRecord{},
		&metricsdomain.UsersRecord{},
		&metricsdomain.StorageRecord{},
		&metricsdomain.TicketsRecord{},
		&auditdomain.AuditEntry{},
	))

	logger := zap.NewNop()
	cfg := config.Config{
		DBType:                "sqlite",
		SessionTimeoutMinutes: 30,
	}

	configRepo := configrepository.Provide()
	metricsRepo := metricsrepository.Provide()
	auditRepo := auditrepository.Provide()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewServer(ServerParams{
		Gin:      NewEngine(logger),
		Cfg:      cfg,
		DB:       db,
		Log:      logger,
		GenID:    node,
		Sessions: session.NewManager(cfg),
		Authsvc: authservice.New(authservice.Params{
			Config:   cfg,
			Log:      logger,
			Clock:    clock.NewSystemClock(),
			Verifier: authservice.NewVerifier(cfg),
		}),
		ConfigSvc: configservice.New(configservice.Params{
			DB: db, Log: logger, Repo: configRepo,
		}),
		MetricsSvc: metricsservice.New(metricsservice.Params{
			DB: db, Log: logger, Repo: metricsRepo, ConfigRepo: configRepo,
		}),
		ReportSvc: reportservice.New(reportservice.Params{
			DB: db, Log: logger, ConfigRepo: configRepo, MetricsRepo: metricsRepo,
		}),
		AuditSvc: auditservice.New(auditservice.Params{
			DB: db, Log: logger, Repo: auditRepo,
		}),
		Deck: deck.New(),
	})
}

func login(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"analyst","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.DefaultCookieName {
			return ck
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func doJSON(srv *Server, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Engine().ServeHTTP(w, req)
	return w
}

func seedRecord(t *testing.T, srv *Server, customer string, m month.Month) {
	t.Helper()
	err := srv.metricsSvc.InsertRecord(context.Background(), metricsdomain.InsertRequest{
		Mode:         metricsdomain.InsertModeConfig,
		Key:          month.NewKey(customer, m),
		CSMPrimary:   "jordan",
		WindowMonths: 3,
		Environments: 2,
	})
	require.NoError(t, err)
}

func TestLoginAndCheckSession(t *testing.T) {
	srv := newTestServer(t, "server_login")
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodGet, "/auth/check_session", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Valid            bool  `json:"valid"`
		RemainingSeconds int64 `json:"remaining_seconds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Greater(t, resp.RemainingSeconds, int64(0))
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	srv := newTestServer(t, "server_login_empty")

	w := doJSON(srv, nil, http.MethodPost, "/auth/login", `{"username":"analyst","password":""}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredBlocksAnonymous(t *testing.T) {
	srv := newTestServer(t, "server_anon")

	w := doJSON(srv, nil, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp.Error.Type)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv := newTestServer(t, "server_logout")
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, cookie, http.MethodGet, "/api/customers", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaveAvailabilityRoute(t *testing.T) {
	srv := newTestServer(t, "server_save_availability")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodPost, "/api/availability",
		`{"customer":"acme","month":"2025-03","updated_availability":95,"updated_target":99}`)
	require.Equal(t, http.StatusOK, w.Code)

	record, err := srv.metricsSvc.Get(context.Background(), month.NewKey("acme", m))
	require.NoError(t, err)
	assert.InDelta(t, 0.95, record.Availability, 1e-9)
	assert.InDelta(t, 0.99, record.Target, 1e-9)
}

func TestSaveAvailabilityRejectsOverHundred(t *testing.T) {
	srv := newTestServer(t, "server_save_availability_range")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodPost, "/api/availability",
		`{"customer":"acme","month":"2025-03","updated_availability":120,"updated_target":99}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveUsersRouteReturnsWarnings(t *testing.T) {
	srv := newTestServer(t, "server_save_users")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodPost, "/api/users",
		`{"customer":"acme","month":"2025-03","prod_limit":10,"prod_used":12,"test_limit":5,"test_used":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool     `json:"success"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Warnings, "Prod Used > Prod Limit")
}

func TestInsertRecordConflict(t *testing.T) {
	srv := newTestServer(t, "server_insert_conflict")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodPost, "/api/records",
		`{"mode":"config","customer":"acme","month":"2025-03","csm_primary":"jordan"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "conflict", resp.Error.Type)
}

func TestGetRecordNotFound(t *testing.T) {
	srv := newTestServer(t, "server_get_missing")
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodGet, "/api/records?customer=ghost&month=2025-03", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRecordReportsCounts(t *testing.T) {
	srv := newTestServer(t, "server_delete")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodDelete, "/api/records?customer=acme&month=2025-03", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool             `json:"success"`
		Counts  map[string]int64 `json:"deleted_counts"`
		Total   int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(6), resp.Total)

	w = doJSON(srv, cookie, http.MethodDelete, "/api/records?customer=acme&month=2025-03", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveConfigRejectsMalformedField(t *testing.T) {
	srv := newTestServer(t, "server_config_malformed")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	body := `{
		"customer": "acme",
		"month": "2025-03",
		"csm_primary": "jordan",
		"color_map_thresholds_availability": "{\"Color1\": 90, \"Color2\": 80, \"Color3\": 70}",
		"color_map_thresholds_users": "{not json",
		"color_map_thresholds_storage": "{\"Color1\": 70, \"Color2\": 80, \"Color3\": 90}",
		"indicator_color_code_rules": "{\"Color1\": [0,176,80], \"Color2\": [255,192,0], \"Color3\": [255,0,0]}",
		"circle_color_code_rules": "{\"Color1\": [0,176,80], \"Color2\": [255,192,0], \"Color3\": [255,0,0]}",
		"notes_availability": "{\"color1\": \"ok\", \"color2\": \"watch\", \"color3\": \"act\"}",
		"notes_users": "{\"color1\": \"ok\", \"color2\": \"watch\", \"color3\": \"act\"}",
		"notes_storage": "{\"color1\": \"ok\", \"color2\": \"watch\", \"color3\": \"act\"}"
	}`
	w := doJSON(srv, cookie, http.MethodPost, "/api/config", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "thr_users", resp.Error.Errors[0].Field)
}

func TestCheckRecordExistsRoute(t *testing.T) {
	srv := newTestServer(t, "server_exists")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodGet, "/api/records/exists?customer=acme&month=2025-03", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = doJSON(srv, cookie, http.MethodGet, "/api/records/exists?customer=acme&month=2025-04", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())
}

func TestFiltersClearedOnReload(t *testing.T) {
	srv := newTestServer(t, "server_filters")
	m, _ := month.Parse("2025-03")
	seedRecord(t, srv, "acme", m)
	cookie := login(t, srv)

	w := doJSON(srv, cookie, http.MethodPost, "/api/filters", `{"key":"customer","value":"acme"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(srv, cookie, http.MethodGet, "/api/filters", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customer":"acme"`)

	w = doJSON(srv, cookie, http.MethodGet, "/api/filters?reload=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{}}`, w.Body.String())
}

func TestHealthEndpointIsPublic(t *testing.T) {
	srv := newTestServer(t, "server_health")

	w := doJSON(srv, nil, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
