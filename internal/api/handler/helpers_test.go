package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/api/middleware"
	"github.com/biznet/bn_server/internal/repository"
	"github.com/biznet/bn_server/internal/service"
	"github.com/biznet/bn_server/internal/testutil"
)

// handlerEnv wires real services over an in-memory database so handler
// tests exercise the full stack below the router.
type handlerEnv struct {
	db                *gorm.DB
	membershipService *service.MembershipService
	catalogService    *service.CatalogService
	reportService     *service.ReportService
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	testutil.SeedTiers(t, db)

	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	catalog := service.NewCatalogService(repository.NewTierRepository(db))

	return &handlerEnv{
		db: db,
		membershipService: service.NewMembershipService(
			db, membershipRepo, historyRepo, userRepo, catalog, service.NewNotifier(nil)),
		catalogService: catalog,
		reportService:  service.NewReportService(userRepo, membershipRepo, historyRepo),
	}
}

// asUser is a stand-in for the auth middleware.
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	}
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reqBody *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := map[string]interface{}{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}
