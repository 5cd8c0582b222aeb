package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/eckassets/internal/ai"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/complaints"
	"github.com/xelth-com/eckassets/internal/services/dashboard"
	"github.com/xelth-com/eckassets/internal/services/history"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
	"github.com/xelth-com/eckassets/internal/services/printer"
	"github.com/xelth-com/eckassets/internal/services/reports"
	"github.com/xelth-com/eckassets/internal/services/users"
	"github.com/xelth-com/eckassets/internal/testutil"
	"github.com/xelth-com/eckassets/internal/utils"
)

const testSecret = "handler-test-secret"

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return g.reply, g.err
}

type testServer struct {
	t      *testing.T
	router *Router
	deps   Deps
	gen    *stubGenerator
	staff  string
	admin  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	log := testutil.Logger()

	hist := history.NewService(db, log)
	assetSvc := assets.NewService(db, hist, log)
	complaintSvc := complaints.NewService(db, assetSvc, hist, log)
	maintenanceSvc := maintenance.NewService(db, hist, log)
	gen := &stubGenerator{reply: `{"feasibility":"ok","maintenancePrediction":"soon","replacementRecommendation":"later"}`}

	deps := Deps{
		DB:          db,
		Assets:      assetSvc,
		History:     hist,
		Complaints:  complaintSvc,
		Maintenance: maintenanceSvc,
		Users:       users.NewService(db, log),
		Activity:    activity.NewService(db, log),
		Dashboard:   dashboard.NewService(db, log),
		Reports:     reports.NewService(db, log),
		Advisor:     ai.NewAdvisor(gen, assetSvc, complaintSvc, maintenanceSvc, hist, time.Second, log),
	}
	ts := &testServer{
		t:      t,
		router: NewRouter(deps, Options{JWTSecret: testSecret, PublicBaseURL: "https://assets.example.com/", Logger: log}),
		deps:   deps,
		gen:    gen,
	}
	ts.staff = ts.token("staff@example.com", models.RoleStaff)
	ts.admin = ts.token("admin@example.com", models.RoleAdmin)
	return ts
}

func (ts *testServer) token(email string, role models.UserRole) string {
	user, err := ts.deps.Users.Create(context.Background(), users.CreateInput{
		Email: email, Password: "secret123", Name: email, Role: role,
	})
	require.NoError(ts.t, err)
	access, _, err := utils.GenerateTokens(user, testSecret)
	require.NoError(ts.t, err)
	return access
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) createAsset(name string) models.Asset {
	rec := ts.do("POST", "/api/assets", ts.staff, map[string]string{
		"name": name, "category": "monitor", "owner": "IT",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Asset](ts.t, rec)
}

func TestHealthAndStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = ts.do("GET", "/api/status", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", decode[map[string]string](t, rec)["status"])
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/auth/login", "", LoginRequest{Email: "STAFF@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["tokens"]["accessToken"])
	assert.Equal(t, "", body["user"]["password"])

	access := body["tokens"]["accessToken"].(string)
	rec = ts.do("GET", "/api/me", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	refresh := body["tokens"]["refreshToken"].(string)
	rec = ts.do("POST", "/auth/refresh", "", RefreshRequest{RefreshToken: refresh})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do("POST", "/auth/refresh", "", RefreshRequest{RefreshToken: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "access tokens cannot refresh")

	rec = ts.do("POST", "/auth/login", "", LoginRequest{Email: "staff@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do("GET", "/api/activity?action=login", ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.Page[models.UserActivityLog]](t, rec).Total)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/api/assets", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do("GET", "/api/assets", "garbage", nil).Code)

	public := ts.token("viewer@example.com", models.RolePublic)
	assert.Equal(t, http.StatusForbidden, ts.do("GET", "/api/assets", public, nil).Code)

	assert.Equal(t, http.StatusForbidden, ts.do("GET", "/api/users", ts.staff, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do("GET", "/api/users", ts.admin, nil).Code)
}

func TestAssetCRUD(t *testing.T) {
	ts := newTestServer(t)
	asset := ts.createAsset("Monitor Dell P2419H")
	assert.Equal(t, models.ConditionNew, asset.Condition)
	assert.Regexp(t, assets.QRCodePattern, asset.QRCode)

	rec := ts.do("GET", fmt.Sprintf("/api/assets/%d", asset.ID), ts.staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do("PUT", fmt.Sprintf("/api/assets/%d", asset.ID), ts.staff, map[string]string{"condition": "broken"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.ConditionBroken, decode[models.Asset](t, rec).Condition)

	rec = ts.do("GET", fmt.Sprintf("/api/assets/%d/history", asset.ID), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]models.AssetHistory](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ChangeStatus, rows[0].ChangeType)
	require.NotNil(t, rows[0].ChangedBy, "actor comes from the token")

	rec = ts.do("GET", "/api/assets?search=dell", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.Page[models.Asset]](t, rec).Total)

	rec = ts.do("GET", "/api/assets?archived=maybe", ts.staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do("POST", "/api/assets", ts.staff, map[string]string{"name": "x", "category": "spaceship", "owner": "IT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/api/assets/9999", ts.staff, nil).Code)

	rec = ts.do("GET", "/api/activity?resourceType=asset", ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[models.Page[models.UserActivityLog]](t, rec).Total)
}

func TestArchiveRestoreAndPermanentDelete(t *testing.T) {
	ts := newTestServer(t)
	asset := ts.createAsset("Projector Epson")
	path := fmt.Sprintf("/api/assets/%d", asset.ID)

	assert.Equal(t, http.StatusConflict, ts.do("POST", path+"/restore", ts.staff, nil).Code, "active assets cannot be restored")
	assert.Equal(t, http.StatusForbidden, ts.do("DELETE", path+"/permanent", ts.staff, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do("DELETE", path+"/permanent", ts.admin, nil).Code, "active assets cannot be removed")

	assert.Equal(t, http.StatusOK, ts.do("DELETE", path, ts.staff, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do("POST", path+"/restore", ts.staff, nil).Code)
	assert.Equal(t, http.StatusConflict, ts.do("POST", path+"/restore", ts.staff, nil).Code)

	assert.Equal(t, http.StatusOK, ts.do("DELETE", path, ts.staff, nil).Code)
	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", path+"/permanent", ts.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", path, ts.staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("GET", path+"/history", ts.staff, nil).Code)
}

func TestPublicQRFlow(t *testing.T) {
	ts := newTestServer(t)
	asset := ts.createAsset("AC Daikin")
	public := "/public/assets/" + asset.QRCode

	rec := ts.do("GET", public, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, asset.Name, decode[publicAssetView](t, rec).Name)

	rec = ts.do("GET", public+"/qrcode.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = ts.do("POST", public+"/complaints", "", PublicComplaintRequest{SenderName: "Sari", Description: "not cooling"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.ComplaintNeedsRepair, decode[models.Complaint](t, rec).Status)

	rec = ts.do("POST", public+"/complaints", "", PublicComplaintRequest{SenderName: "", Description: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := ts.deps.Assets.Archive(context.Background(), asset.ID, nil)
	require.NoError(t, err)

	rec = ts.do("GET", public, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, "archived assets still resolve")
	assert.True(t, decode[publicAssetView](t, rec).IsArchived)

	rec = ts.do("POST", public+"/complaints", "", PublicComplaintRequest{SenderName: "Sari", Description: "still broken"})
	assert.Equal(t, http.StatusNotFound, rec.Code, "archived assets take no complaints")

	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/public/assets/AST-unknown-00000000", "", nil).Code)
}

func TestComplaintResolution(t *testing.T) {
	ts := newTestServer(t)
	asset := ts.createAsset("Printer HP")

	rec := ts.do("POST", "/api/complaints", ts.staff, complaints.CreateInput{AssetID: asset.ID, SenderName: "Andi", Description: "paper jam"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	complaint := decode[models.Complaint](t, rec)

	path := fmt.Sprintf("/api/complaints/%d", complaint.ID)
	rec = ts.do("PUT", path+"/status", ts.staff, ComplaintStatusRequest{Status: models.ComplaintRepaired})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode[models.Complaint](t, rec).ResolvedBy)

	rec = ts.do("PUT", path+"/status", ts.staff, ComplaintStatusRequest{Status: "fixed-ish"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rows, err := ts.deps.History.ListByAsset(context.Background(), asset.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ChangeComplaintResolved, rows[0].ChangeType)

	rec = ts.do("GET", fmt.Sprintf("/api/complaints?assetId=%d&status=repaired", asset.ID), ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.Page[models.Complaint]](t, rec).Total)

	assert.Equal(t, http.StatusNoContent, ts.do("DELETE", path, ts.staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("DELETE", path, ts.staff, nil).Code)
}

func TestMaintenanceLifecycle(t *testing.T) {
	ts := newTestServer(t)
	asset := ts.createAsset("CPU Lenovo")

	rec := ts.do("POST", "/api/maintenance", ts.staff, map[string]interface{}{
		"assetId": asset.ID, "title": "Clean fans", "scheduledDate": time.Now().Add(48 * time.Hour).UTC(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	schedule := decode[models.MaintenanceSchedule](t, rec)
	assert.NotZero(t, schedule.ScheduledBy, "scheduler defaults to the caller")

	rec = ts.do("GET", "/api/maintenance/upcoming?days=7", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MaintenanceSchedule](t, rec), 1)

	path := fmt.Sprintf("/api/maintenance/%d", schedule.ID)
	rec = ts.do("POST", path+"/complete", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[models.MaintenanceSchedule](t, rec).IsCompleted)

	assert.Equal(t, http.StatusConflict, ts.do("POST", path+"/complete", ts.staff, nil).Code)

	rec = ts.do("GET", "/api/maintenance?completed=true", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.Page[models.MaintenanceSchedule]](t, rec).Total)

	rec = ts.do("GET", "/api/maintenance?from=not-a-date", ts.staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserAdministration(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/api/users", ts.admin, users.CreateInput{Email: "new@example.com", Password: "secret123", Name: "New"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.User](t, rec)
	assert.Empty(t, created.Password)

	rec = ts.do("POST", "/api/users", ts.admin, users.CreateInput{Email: "new@example.com", Password: "secret123", Name: "Dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do("DELETE", fmt.Sprintf("/api/users/%d", created.ID), ts.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.User](t, rec).IsActive)

	rec = ts.do("POST", "/auth/login", "", LoginRequest{Email: "new@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAIEndpoints(t *testing.T) {
	ts := newTestServer(t)
	asset := ts.createAsset("Laptop Asus")
	base := fmt.Sprintf("/api/ai/assets/%d", asset.ID)

	rec := ts.do("GET", base+"/suggestions", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ai.Suggestions{Feasibility: "ok", MaintenancePrediction: "soon", ReplacementRecommendation: "later"},
		decode[ai.Suggestions](t, rec))

	ts.gen.reply = "Keep it running."
	rec = ts.do("GET", base+"/condition", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Keep it running.", decode[analysisResponse](t, rec).Analysis)

	ts.gen.err = &ai.EndpointError{StatusCode: 503, Body: "overloaded"}
	assert.Equal(t, http.StatusBadGateway, ts.do("GET", base+"/replacement", ts.staff, nil).Code)

	ts.gen.err = nil
	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/api/ai/assets/9999/suggestions", ts.staff, nil).Code)
}

func TestLabelsErrorStatus(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createAsset("Mouse Logitech")

	rec := ts.do("POST", "/api/assets/labels.pdf", ts.staff, LabelsRequest{
		AssetIDs: []uint{a.ID},
		Layout:   printer.LabelConfig{Cols: 3, Rows: 8, MarginLeft: 120},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "layout that cannot fit a label")

	codeless := &models.Asset{Name: "Codeless", Category: models.CategoryOther, Condition: models.ConditionGood}
	require.NoError(t, ts.deps.DB.Create(codeless).Error)
	rec = ts.do("POST", "/api/assets/labels.pdf", ts.staff, LabelsRequest{AssetIDs: []uint{codeless.ID}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "render failures are server errors")
	assert.NotContains(t, rec.Body.String(), "empty qr code")
}

func TestLabelsAndDashboard(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createAsset("Mouse Logitech")
	b := ts.createAsset("Keyboard Logitech")

	rec := ts.do("POST", "/api/assets/labels.pdf", ts.staff, LabelsRequest{AssetIDs: []uint{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusBadRequest, ts.do("POST", "/api/assets/labels.pdf", ts.staff, LabelsRequest{}).Code)

	rec = ts.do("GET", "/api/dashboard", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[dashboard.Stats](t, rec)
	assert.EqualValues(t, 2, stats.TotalAssets)

	rec = ts.do("GET", "/api/reports/assets?category=monitor", ts.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Asset](t, rec), 2)
}

func TestRecoveryMiddleware(t *testing.T) {
	ts := newTestServer(t)
	ts.router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rec := ts.do("GET", "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
