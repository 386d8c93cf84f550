package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/router"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.SilenceLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Seed meja & staff, signup + login customer -> token
// 1. Booking 18:00 => created, meja Busy
// 2. Booking 18:30 di meja yang sama => conflict
// 3. Booking 20:00 => created
// 4. Sweep setelah jam lewat => reservasi Done, meja Free
func TestEndToEndIntegration(t *testing.T) {
	db, clock := setupTestDB(t)
	svcs := services.New(services.Options{
		DB:       db,
		Clock:    clock,
		Location: time.UTC,
		Hub:      hub.New(),
	})
	svcs.Accounts.BcryptCost = bcrypt.MinCost
	r := router.SetupRouter(svcs, &config.Config{CORSOrigin: "*"}, nil, nil)

	signupTest(t, r)
	token := loginTest(t, r, "guest", "guest-pw")

	bookTest(t, r, token, "18:00", http.StatusCreated)
	bookTest(t, r, token, "18:30", http.StatusConflict)
	bookTest(t, r, token, "20:00", http.StatusCreated)

	var table models.Table
	require.NoError(t, db.First(&table, 1).Error)
	require.Equal(t, models.TableBusy, table.Status)

	clock.Set(time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC))
	staffToken := loginTest(t, r, "host", "host-pw")
	w := request(t, r, http.MethodPost, "/admin/sweep", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"status":true,"message":"Sweep finished","data":{"completed":2}}`, w.Body.String())

	require.NoError(t, db.First(&table, 1).Error)
	require.Equal(t, models.TableFree, table.Status)
}

// setupTestDB -> migrasi model di SQLite in-memory + seed data
func setupTestDB(t *testing.T) (*gorm.DB, *services.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:e2e?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	require.NoError(t, db.Create(&models.Table{Capacity: 4, Status: models.TableFree}).Error)
	hashed, _ := bcrypt.GenerateFromPassword([]byte("host-pw"), bcrypt.MinCost)
	require.NoError(t, db.Create(&models.User{
		Username: "host",
		Email:    "host@restobook.local",
		Password: string(hashed),
		Role:     models.RoleStaff,
	}).Error)

	return db, services.NewFakeClock(time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC))
}

func signupTest(t *testing.T, r http.Handler) {
	form := url.Values{
		"username":        {"guest"},
		"email":           {"guest@example.com"},
		"password":        {"guest-pw"},
		"confirmPassword": {"guest-pw"},
		"cardnumber":      {"4000056655665556"},
		"cvv":             {"321"},
		"edate":           {"2029-12-01"},
	}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func loginTest(t *testing.T, r http.Handler, username, password string) string {
	w := request(t, r, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Status)
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func bookTest(t *testing.T, r http.Handler, token, at string, want int) {
	w := request(t, r, http.MethodPost, "/reservations", token, map[string]interface{}{
		"date": "2025-03-01", "time": at, "people": 4, "table": 1,
	})
	require.Equal(t, want, w.Code, "booking at %s: %s", at, w.Body.String())
}

func request(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
