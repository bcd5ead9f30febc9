package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	matchsvc "canopy-backend/internal/application/matching"
	"canopy-backend/internal/collaborators/fake"
	"canopy-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

func setupMatchingTest(t *testing.T) (*Handlers, *fake.EmissionSource, *fake.CreditLedger) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.MatchRecord{},
		&domain.MatchHistoryEntry{},
		&domain.PendingProposal{},
		&domain.AutoMatchPreference{},
		&domain.SystemSettings{},
	))
	require.NoError(t, db.Create(&domain.SystemSettings{ID: domain.SettingsRowID, OwnerID: uuid.New()}).Error)

	emissions := &fake.EmissionSource{Required: map[string]int64{}}
	ledger := &fake.CreditLedger{Balances: map[string]int64{}, Unverified: map[string]bool{}}
	svc := &matchsvc.Service{DB: db, Emissions: emissions, Ledger: ledger, Tokens: &fake.TokenIssuer{}}
	return &Handlers{Service: svc}, emissions, ledger
}

func withUser(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": testUserID,
			"role":    "operator",
			"email":   "ops@test.com",
		})
		return c.Next()
	})
}

func TestManualMatch_Created(t *testing.T) {
	h, emissions, ledger := setupMatchingTest(t)
	emissions.Required["FLT-1"] = 100
	ledger.Balances["PRJ-A"] = 500

	app := fiber.New()
	withUser(app)
	app.Post("/manual-match", h.ManualMatch)

	body, _ := json.Marshal(map[string]interface{}{
		"emitter_id":  "FLT-1",
		"project_ids": []string{"PRJ-A"},
	})
	req := httptest.NewRequest("POST", "/manual-match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "Match created", result["message"])
}

func TestManualMatch_MissingFields(t *testing.T) {
	h, _, _ := setupMatchingTest(t)
	app := fiber.New()
	withUser(app)
	app.Post("/manual-match", h.ManualMatch)

	body, _ := json.Marshal(map[string]interface{}{"emitter_id": "FLT-1"})
	req := httptest.NewRequest("POST", "/manual-match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "error", result["status"])
	errObj, _ := result["error"].(map[string]interface{})
	require.NotNil(t, errObj)
	assert.Equal(t, "Missing required fields", errObj["message"])
}

func TestManualMatch_InvalidProjectIDFormat(t *testing.T) {
	h, _, _ := setupMatchingTest(t)
	app := fiber.New()
	withUser(app)
	app.Post("/manual-match", h.ManualMatch)

	body, _ := json.Marshal(map[string]interface{}{
		"emitter_id":  "FLT-1",
		"project_ids": []string{"bad id"},
	})
	req := httptest.NewRequest("POST", "/manual-match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestManualMatch_NoUser(t *testing.T) {
	h, emissions, ledger := setupMatchingTest(t)
	emissions.Required["FLT-1"] = 100
	ledger.Balances["PRJ-A"] = 500

	app := fiber.New()
	app.Post("/manual-match", h.ManualMatch)

	body, _ := json.Marshal(map[string]interface{}{
		"emitter_id":  "FLT-1",
		"project_ids": []string{"PRJ-A"},
	})
	req := httptest.NewRequest("POST", "/manual-match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestManualMatch_ConflictOnSecondMatch(t *testing.T) {
	h, emissions, ledger := setupMatchingTest(t)
	emissions.Required["FLT-1"] = 100
	ledger.Balances["PRJ-A"] = 500
	ledger.Balances["PRJ-B"] = 500

	app := fiber.New()
	withUser(app)
	app.Post("/manual-match", h.ManualMatch)

	send := func(project string) int {
		body, _ := json.Marshal(map[string]interface{}{
			"emitter_id":  "FLT-1",
			"project_ids": []string{project},
		})
		req := httptest.NewRequest("POST", "/manual-match", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 201, send("PRJ-A"))
	assert.Equal(t, 409, send("PRJ-B"))
}

func TestAutoMatch_NoPreference(t *testing.T) {
	h, emissions, _ := setupMatchingTest(t)
	emissions.Required["FLT-1"] = 100

	app := fiber.New()
	withUser(app)
	app.Post("/auto-match", h.AutoMatch)

	body, _ := json.Marshal(map[string]interface{}{"emitter_id": "FLT-1"})
	req := httptest.NewRequest("POST", "/auto-match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGetMatch_NotFound(t *testing.T) {
	h, _, _ := setupMatchingTest(t)
	app := fiber.New()
	app.Get("/match/:emitter_id", h.GetMatch)

	req := httptest.NewRequest("GET", "/match/FLT-NONE", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGetStats(t *testing.T) {
	h, _, _ := setupMatchingTest(t)
	app := fiber.New()
	app.Get("/stats", h.GetStats)

	req := httptest.NewRequest("GET", "/stats", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
}

func TestRetire_ForbiddenForNonMatcher(t *testing.T) {
	h, emissions, ledger := setupMatchingTest(t)
	emissions.Required["FLT-1"] = 100
	ledger.Balances["PRJ-A"] = 500

	matcher := uuid.New()
	_, err := h.Service.ManualMatch(context.Background(), "FLT-1", []string{"PRJ-A"}, "", matcher)
	require.NoError(t, err)

	app := fiber.New()
	withUser(app)
	app.Post("/retire", h.Retire)

	body, _ := json.Marshal(map[string]interface{}{"emitter_id": "FLT-1"})
	req := httptest.NewRequest("POST", "/retire", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}
