package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/health"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		code    int
		message string
	}{
		{fmt.Errorf("%w: description is required", services.ErrValidation), http.StatusBadRequest, "validation failed: description is required"},
		{fmt.Errorf("%w: user 9", services.ErrNotFound), http.StatusNotFound, "not found: user 9"},
		{services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{services.ErrConflict, http.StatusConflict, "conflict"},
		{fmt.Errorf("%w: %w", services.ErrGenerationFailed, errors.New("upstream said API_KEY_INVALID")), http.StatusBadGateway, generationFailureMessage},
		{errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, quietLogger(), tt.err)

			assert.Equal(t, tt.code, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, resp.Error)
			assert.NotContains(t, w.Body.String(), "API_KEY_INVALID")
		})
	}
}

func TestAIHandler(t *testing.T) {
	ai := &mockAI{}
	h := NewAIHandler(ai, quietLogger())

	r := gin.New()
	r.Use(as(7, "asha", models.RoleClient))
	r.POST("/ai", h.GenerateComplaint)
	r.POST("/ai/scored", h.GenerateScoredComplaint)

	generated := &models.GeneratedComplaint{
		ComplaintDTO: models.ComplaintDTO{ID: 42, TicketNo: "HC-1", Category: models.CategoryPlumbing},
		Message:      "Complaint generated successfully",
	}
	ai.On("GenerateComplaint", "tap leaking", "asha").Return(generated, nil).Once()

	w := serve(r, jsonRequest(http.MethodPost, "/ai", `{"description":"tap leaking"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Complaint generated successfully", resp.Message)
	assert.Contains(t, w.Body.String(), `"ticketNo":"HC-1"`)

	ai.On("GenerateComplaint", "fan broken", "asha").
		Return(nil, fmt.Errorf("%w: %w", services.ErrGenerationFailed, errors.New("status 500"))).Once()
	w = serve(r, jsonRequest(http.MethodPost, "/ai", `{"description":"fan broken"}`))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Gemini API Failure"}`, w.Body.String())

	w = serve(r, jsonRequest(http.MethodPost, "/ai", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ai.On("GenerateScoredComplaint", "door jammed", uint(7)).
		Return(&models.ScoredComplaintResponse{ID: 43, PriorityLevel: 6, Message: "Complaint generated successfully"}, nil).Once()
	w = serve(r, jsonRequest(http.MethodPost, "/ai/scored", `{"description":"door jammed"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"priorityLevel":6`)

	ai.AssertExpectations(t)
}

func TestQAHandlerScopes(t *testing.T) {
	qa := &mockQA{}
	h := NewQAHandler(qa, quietLogger())

	client := gin.New()
	client.POST("/qa", as(7, "asha", models.RoleClient), h.AskClient)

	qa.On("AnswerQuestion", "any leaks?", uint(7)).Return("Two open plumbing issues.", nil).Once()
	w := serve(client, jsonRequest(http.MethodPost, "/qa", `{"question":"any leaks?","userId":7}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answer":"Two open plumbing issues."`)

	w = serve(client, jsonRequest(http.MethodPost, "/qa", `{"question":"any leaks?","userId":8}`))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(client, jsonRequest(http.MethodPost, "/qa", `{"userId":7}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := gin.New()
	admin.POST("/admin/qa", as(1, "warden", models.RoleAdmin), h.AskAdmin)

	qa.On("AnswerAdminQuestion", "summary?", mock.MatchedBy(func(id *uint) bool {
		return id != nil && *id == 1
	})).Return("All quiet.", nil).Once()
	w = serve(admin, jsonRequest(http.MethodPost, "/admin/qa", `{"question":"summary?"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	qa.AssertExpectations(t)
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/complaints", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestComplaintCreate(t *testing.T) {
	complaints := &mockComplaints{}
	h := NewComplaintHandler(complaints, quietLogger())
	r := gin.New()
	r.POST("/complaints", as(7, "asha", models.RoleClient), h.Create)

	caller := services.Caller{UserID: 7, Role: models.RoleClient}
	complaints.On("CreateComplaint", caller, mock.MatchedBy(func(req *models.CreateComplaintRequest) bool {
		return req.Category == "plumbing" && req.Description == "sink blocked"
	}), mock.MatchedBy(func(img *services.Image) bool {
		return img != nil && img.Name == "sink.png"
	})).Return(&models.ComplaintDTO{ID: 42, ImageURL: "/uploads/x.png"}, nil).Once()

	w := serve(r, multipartRequest(t, map[string]string{
		"category":    "plumbing",
		"description": "sink blocked",
	}, "sink.png", []byte("png")))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "/uploads/x.png")

	w = serve(r, multipartRequest(t, map[string]string{
		"category":    "plumbing",
		"description": "sink blocked",
	}, "payload.exe", []byte("MZ")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, multipartRequest(t, map[string]string{"category": "plumbing"}, "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	complaints.AssertExpectations(t)
}

func TestComplaintCreateWithoutImage(t *testing.T) {
	complaints := &mockComplaints{}
	h := NewComplaintHandler(complaints, quietLogger())
	r := gin.New()
	r.POST("/complaints", as(7, "asha", models.RoleClient), h.Create)

	complaints.On("CreateComplaint", mock.Anything, mock.Anything, (*services.Image)(nil)).
		Return(&models.ComplaintDTO{ID: 42}, nil).Once()

	w := serve(r, multipartRequest(t, map[string]string{
		"category":    "ELECTRICAL",
		"description": "no power",
	}, "", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	complaints.AssertExpectations(t)
}

func TestComplaintSearch(t *testing.T) {
	complaints := &mockComplaints{}
	h := NewComplaintHandler(complaints, quietLogger())
	r := gin.New()
	r.GET("/search", as(1, "warden", models.RoleAdmin), h.Search)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	complaints.On("SearchComplaints", services.Caller{UserID: 1, Role: models.RoleAdmin}, mock.MatchedBy(func(f models.ComplaintFilter) bool {
		return f.Query == "leak" && f.Agent == "plumber" && f.From != nil && f.From.Equal(from) && f.To == nil && f.Category == "plumbing"
	})).Return([]models.ComplaintDTO{{ID: 3}}, nil).Once()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/search?q=leak&agent=plumber&from=2026-03-01&category=plumbing", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/search?to=03/01/2026", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	complaints.On("SearchComplaints", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: to is before from", services.ErrValidation)).Once()
	w = serve(r, httptest.NewRequest(http.MethodGet, "/search?from=2026-03-02&to=2026-03-01", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	complaints.AssertExpectations(t)
}

func TestComplaintGetAndStatus(t *testing.T) {
	complaints := &mockComplaints{}
	h := NewComplaintHandler(complaints, quietLogger())
	r := gin.New()
	r.GET("/complaints/:id", as(7, "asha", models.RoleClient), h.Get)
	r.PUT("/complaints/:id/status", h.UpdateStatus)
	r.DELETE("/complaints/:id", h.Delete)

	complaints.On("GetComplaint", mock.Anything, uint(5)).Return(nil, fmt.Errorf("%w: not yours", services.ErrForbidden)).Once()
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/complaints/5", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/complaints/abc", nil)).Code)

	complaints.On("UpdateStatus", uint(5), models.Status("resolved")).Return(&models.ComplaintDTO{ID: 5, Status: models.StatusResolved}, nil).Once()
	w := serve(r, jsonRequest(http.MethodPut, "/complaints/5/status", `{"status":"resolved"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	complaints.On("DeleteComplaint", uint(9)).Return(fmt.Errorf("%w: complaint 9", services.ErrNotFound)).Once()
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodDelete, "/complaints/9", nil)).Code)

	complaints.AssertExpectations(t)
}

func TestComplaintExport(t *testing.T) {
	complaints := &mockComplaints{}
	h := NewComplaintHandler(complaints, quietLogger())
	r := gin.New()
	r.GET("/export", h.Export)

	complaints.On("ExportCSV").Return("Id,MessageType\n\"1\",\"GRIEVANCE\"\n", nil).Once()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "complaints.csv")
	assert.Equal(t, "Id,MessageType\n\"1\",\"GRIEVANCE\"\n", w.Body.String())

	complaints.On("ExportCSV").Return("", errors.New("db down")).Once()
	w = serve(r, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestAnalyticsHandlerScopes(t *testing.T) {
	analytics := &mockAnalytics{}
	h := NewAnalyticsHandler(analytics, quietLogger())

	r := gin.New()
	client := r.Group("", as(7, "asha", models.RoleClient))
	client.GET("/history/:userId", h.History)
	client.GET("/analytics/user/:userId/daily", h.UserDaily)

	analytics.On("History", uint(7)).Return([]models.QaHistoryDTO{{ID: 1}}, nil).Once()
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/history/7", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/history/8", nil)).Code)

	analytics.On("DailyCounts", mock.MatchedBy(func(id *uint) bool { return id != nil && *id == 7 }), 0).
		Return([]models.DailyCountDTO{}, nil).Once()
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/analytics/user/7/daily", nil)).Code)

	analytics.On("DailyCounts", mock.Anything, 3).Return([]models.DailyCountDTO{}, nil).Once()
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/analytics/user/7/daily?days=3", nil)).Code)

	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/analytics/user/7/daily?days=week", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/analytics/user/7/daily?days=1000", nil)).Code)

	analytics.AssertExpectations(t)
}

func TestAnalyticsGlobal(t *testing.T) {
	analytics := &mockAnalytics{}
	h := NewAnalyticsHandler(analytics, quietLogger())
	r := gin.New()
	r.GET("/global", h.Global)
	r.GET("/global/daily", h.GlobalDaily)

	analytics.On("GlobalAnalytics").Return(&models.AnalyticsDTO{TotalQuestions: 4, SuccessCount: 3, ErrorCount: 1}, nil).Once()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/global", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalQuestions":4`)

	analytics.On("DailyCounts", (*uint)(nil), 7).Return([]models.DailyCountDTO{}, nil).Once()
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/global/daily?days=7", nil)).Code)

	analytics.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	stub := &stubHealth{live: health.OverallHealth{Status: health.StatusUnhealthy}}
	h := NewHealthHandler(stub, time.Minute, quietLogger())
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/health/live", h.Live)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 1, stub.snapshot)

	stub.cached = &health.OverallHealth{Status: health.StatusDegraded}
	w = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Equal(t, 1, stub.snapshot)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health/live", nil)).Code)
}
