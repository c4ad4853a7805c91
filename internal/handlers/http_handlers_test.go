package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prizedraw/internal/config"
	"prizedraw/internal/metrics"
	"prizedraw/internal/models"
	"prizedraw/internal/services"
)

type testServer struct {
	router  *gin.Engine
	service *services.LotteryService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	collector := metrics.NewCollector("")
	service := services.NewLotteryService(config.Config{CountdownTicks: 2, Seed: 11, DefaultBackups: 2}, collector)
	router := gin.New()
	NewHTTPHandler(service, collector).RegisterRoutes(router)
	return &testServer{router: router, service: service}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestPrizeEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/prizes", map[string]any{"name": "Laptop"})
	require.Equal(t, http.StatusCreated, rec.Code)
	laptop := decode[models.Prize](t, rec)
	assert.Equal(t, 1, laptop.WinnerCount)
	assert.Equal(t, 2, laptop.BackupCount, "default backups apply when omitted")

	rec = s.do(t, http.MethodPost, "/prizes", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/prizes/"+laptop.ID, map[string]any{"winnerCount": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[models.Prize](t, rec).WinnerCount)

	rec = s.do(t, http.MethodPatch, "/prizes/"+laptop.ID, map[string]any{"name": "Gaming Laptop", "backupCount": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Prize](t, rec)
	assert.Equal(t, "Gaming Laptop", updated.Name)
	assert.Equal(t, 3, updated.WinnerCount, "absent fields are left alone")
	assert.Equal(t, 0, updated.BackupCount)

	rec = s.do(t, http.MethodPatch, "/prizes/"+laptop.ID, map[string]any{"name": " ", "winnerCount": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/prizes", nil)
	assert.Equal(t, 3, decode[struct{ Prizes []models.Prize }](t, rec).Prizes[0].WinnerCount, "rejected update changes nothing")

	rec = s.do(t, http.MethodPatch, "/prizes/missing", map[string]any{"winnerCount": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/prizes", map[string]any{"name": "Mug", "winnerCount": 0, "backupCount": 0})
	require.Equal(t, http.StatusCreated, rec.Code)
	mug := decode[models.Prize](t, rec)
	assert.Equal(t, 1, mug.WinnerCount)
	assert.Equal(t, 0, mug.BackupCount)

	rec = s.do(t, http.MethodDelete, "/prizes/"+laptop.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/prizes", nil)
	list := decode[struct{ Prizes []models.Prize }](t, rec)
	require.Len(t, list.Prizes, 1)
	assert.Equal(t, "Mug", list.Prizes[0].Name)
}

func TestDrawFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/draw/arm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "nothing to draw yet")

	rec = s.do(t, http.MethodPost, "/participants", []models.Participant{
		{Name: "A"}, {Name: "B"}, {Name: ""}, {Name: "C"}, {Name: "D"}, {Name: "E"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[struct{ Count int }](t, rec).Count)

	rec = s.do(t, http.MethodPost, "/prizes", map[string]any{"name": "P1", "winnerCount": 2, "backupCount": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	p1 := decode[models.Prize](t, rec)

	rec = s.do(t, http.MethodPost, "/draw/arm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct{ Accepted bool }](t, rec).Accepted)

	rec = s.do(t, http.MethodPost, "/participants", []models.Participant{{Name: "Late"}})
	assert.Equal(t, http.StatusConflict, rec.Code, "pool is frozen during countdown")

	s.service.Tick()
	s.service.Tick()

	rec = s.do(t, http.MethodGet, "/draw", nil)
	view := decode[services.DrawView](t, rec)
	assert.Equal(t, models.PhaseCompleted, view.State.Phase)
	require.Len(t, view.Results, 1)
	assert.Len(t, view.Results[0].Winners, 2)
	assert.Len(t, view.Results[0].Backups, 1)

	rec = s.do(t, http.MethodGet, "/results/"+p1.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct{ Winners []models.Winner }](t, rec).Winners, 3)

	rec = s.do(t, http.MethodGet, "/results/anyprize", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/results?status=backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct{ Winners []models.Winner }](t, rec).Winners, 1)

	rec = s.do(t, http.MethodGet, "/results?status=other", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/results/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(rec.Body.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Backup", rows[3][4])

	rec = s.do(t, http.MethodGet, "/results/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")

	rec = s.do(t, http.MethodGet, "/results/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/draw/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/results", nil)
	assert.Empty(t, decode[struct{ Winners []models.Winner }](t, rec).Winners)
}

func TestCancelDraw(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/participants", []models.Participant{{Name: "A"}, {Name: "B"}})
	s.do(t, http.MethodPost, "/prizes", map[string]any{"name": "P1"})

	rec := s.do(t, http.MethodPost, "/draw/cancel", nil)
	assert.False(t, decode[struct{ Accepted bool }](t, rec).Accepted)

	s.do(t, http.MethodPost, "/draw/arm", nil)
	rec = s.do(t, http.MethodPost, "/draw/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct{ Accepted bool }](t, rec).Accepted)
	assert.Equal(t, models.PhaseIdle, s.service.State().Phase)
}

func TestUploadParticipants(t *testing.T) {
	s := newTestServer(t)

	upload := func(filename, content string) *httptest.ResponseRecorder {
		return s.upload(t, "/participants/upload", filename, content)
	}

	rec := upload("people.csv", "Name,Email\nAlice,a@example.com\nBob,\n")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.service.GetParticipants(), 2)

	rec = upload("people.csv", "Name\n\"broken\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, s.service.GetParticipants(), 2, "failed import leaves the pool untouched")

	rec = upload("people.txt", "Name\nAlice\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPrizes(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(t, "/prizes/upload", "prizes.csv", "name,winnerCount,backupCount\nLaptop,2,1\nMug,0,-3\nbad\n ,1,1\nPen,x,1\n")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Prizes  []models.Prize
		Added   int
		Skipped int
	}](t, rec)
	assert.Equal(t, 2, resp.Added)
	assert.Equal(t, 4, resp.Skipped, "header, short row, blank name and bad count are skipped")
	require.Len(t, resp.Prizes, 2)
	assert.Equal(t, "Laptop", resp.Prizes[0].Name)
	assert.Equal(t, 2, resp.Prizes[0].WinnerCount)
	assert.Equal(t, 1, resp.Prizes[0].BackupCount)
	assert.Equal(t, "Mug", resp.Prizes[1].Name)
	assert.Equal(t, 1, resp.Prizes[1].WinnerCount, "counts are clamped")
	assert.Equal(t, 0, resp.Prizes[1].BackupCount)

	rec = s.upload(t, "/prizes/upload", "prizes.csv", "Pen,1,0\n\"broken,1,0\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, s.service.GetPrizes(), 2, "unreadable file adds nothing")

	s.do(t, http.MethodPost, "/participants", []models.Participant{{Name: "A"}})
	rec = s.do(t, http.MethodPost, "/draw/arm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.upload(t, "/prizes/upload", "prizes.csv", "Pen,1,0\n")
	assert.Equal(t, http.StatusConflict, rec.Code, "registry is frozen once armed")
	assert.Len(t, s.service.GetPrizes(), 2)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/participants", []models.Participant{{Name: "A"}})

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lottery_pool_size 1")
}
