// Package testsupport provides shared helpers for package tests: in-memory
// databases, event fixtures, and a fully-routed test app.
package testsupport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dealkart/internal"
	"dealkart/internal/config"
	"dealkart/internal/database"
	"dealkart/internal/eventlog"
	"dealkart/internal/events"
	"dealkart/internal/products"
	"dealkart/internal/scraper"
	"dealkart/internal/users"
)

// TestPrivateKey signs admin tokens in tests.
const TestPrivateKey = "test-private-key-32-bytes-long!!"

// testDBCache caches test databases by root test name so multiple setup calls
// within the same test share one database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// GetConfig returns a self-contained test configuration. It never touches the
// process environment or the config singleton, so tests stay hermetic.
func GetConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		AppName:              "dealkart",
		AppPort:              "0",
		Environment:          config.Test,
		LogLevel:             config.LogLevelError,
		PrivateKey:           TestPrivateKey,
		LoginTokenTTLSeconds: 3600,
		StoragePath:          dir,
		DatabaseName:         dir + "/dealkart-test.db",
		EventLogName:         dir + "/events-test.json",
		LogsDirectory:        dir,
		ScrapeTimeoutSeconds: 2,
		GeoLookupTimeoutSecs: 1,
	}
}

// GetLogger returns a quiet test logger.
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// SetupTestDB creates a migrated test database. Uses a named in-memory
// database with cache=shared so every connection within a test sees the same
// data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(&products.Product{}, &users.User{}); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestUserForAuth creates an admin user with a properly hashed password.
func CreateTestUserForAuth(t *testing.T, db *gorm.DB, email, password string) *users.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &users.User{
		Email:             email,
		EncryptedPassword: string(hashed),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestProduct creates a catalog product with sensible defaults.
func CreateTestProduct(t *testing.T, db *gorm.DB, title string) *products.Product {
	t.Helper()

	product := &products.Product{
		Title:         title,
		Price:         999,
		OriginalPrice: 1999,
		Platform:      events.PlatformAmazon,
		AffiliateLink: "https://www.amazon.in/dp/B0TEST0001?tag=test-21",
	}
	require.NoError(t, products.Create(db, product))
	return product
}

// TestApp bundles a routed fiber app with the components tests poke at
// directly.
type TestApp struct {
	App      *internal.Application
	Fiber    *fiber.App
	DB       *gorm.DB
	EventLog *eventlog.MemoryLog
	Config   *config.Config
}

// SetupTestApp creates an application with all routes mounted, backed by an
// in-memory database and event log. No listener is started; drive it with
// Fiber's app.Test.
func SetupTestApp(t *testing.T) *TestApp {
	t.Helper()

	cfg := GetConfig(t)
	logger := GetLogger()
	db := SetupTestDB(t)
	log := eventlog.NewMemoryLog()

	app := &internal.Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: database.NewDBManagerWithConnection(cfg, logger, db),
		EventLog:  log,
		Scraper:   scraper.New(time.Duration(cfg.ScrapeTimeoutSeconds)*time.Second, logger),
	}

	f := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.MountRoutes(f)

	return &TestApp{App: app, Fiber: f, DB: db, EventLog: log, Config: cfg}
}

// LoginTestUser creates an admin user, logs in through the HTTP surface, and
// returns the bearer token.
func LoginTestUser(t *testing.T, ta *TestApp, email, password string) string {
	t.Helper()

	CreateTestUserForAuth(t, ta.DB, email, password)

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ta.Fiber.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.True(t, result.Success)
	require.NotEmpty(t, result.Token)
	return result.Token
}

// MakeVisitor builds a visitor event fixture. age is how far in the past the
// event occurred relative to now.
func MakeVisitor(sessionID, page string, age time.Duration) events.VisitorEvent {
	return events.VisitorEvent{
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Add(-age),
		Page:      page,
		Referrer:  events.DirectReferrer,
		Device:    "Desktop",
		Browser:   "Chrome",
		OS:        "Windows",
		Language:  "English",
		Timezone:  "UTC",
		IP:        events.LocalhostIP,
		Location:  events.LocalLocation(),
	}
}

// MakeClick builds a click event fixture tied to a session.
func MakeClick(sessionID, productID, title string, age time.Duration) events.ClickEvent {
	return events.ClickEvent{
		SessionID:    sessionID,
		Timestamp:    time.Now().UTC().Add(-age),
		ProductID:    productID,
		ProductTitle: title,
		Platform:     events.PlatformAmazon,
		Price:        999,
		IP:           events.LocalhostIP,
	}
}
