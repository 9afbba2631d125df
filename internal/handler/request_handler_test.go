package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return "Bearer " + signed
}

// stubRequestService records which operation a route dispatched to
type stubRequestService struct {
	lastCall      string
	lastRequestID uuid.UUID
	lastApprove   bool
}

func (s *stubRequestService) CreateRequest(_ context.Context, _ uuid.UUID, _ service.CreateRequestDTO) (service.ServiceRequestResponse, error) {
	s.lastCall = "create"
	return service.ServiceRequestResponse{}, nil
}

func (s *stubRequestService) Decide(_ context.Context, requestID, _ uuid.UUID, approve bool) (service.ServiceRequestResponse, error) {
	s.lastCall = "decide"
	s.lastRequestID = requestID
	s.lastApprove = approve
	return service.ServiceRequestResponse{}, nil
}

func (s *stubRequestService) RequestsForUser(_ context.Context, _ uuid.UUID) ([]service.ServiceRequestResponse, error) {
	s.lastCall = "my"
	return nil, nil
}

func (s *stubRequestService) PendingRequests(_ context.Context) ([]service.ServiceRequestResponse, error) {
	s.lastCall = "pending"
	return nil, nil
}

func (s *stubRequestService) Timeline(_ context.Context, requestID uuid.UUID) ([]service.TimelineEntryResponse, error) {
	s.lastCall = "timeline"
	s.lastRequestID = requestID
	return nil, nil
}

func newRequestRouter() (*gin.Engine, *stubRequestService) {
	gin.SetMode(gin.TestMode)
	stub := &stubRequestService{}
	router := gin.New()
	NewRequestHandler(stub).RegisterRoutes(router.Group(""))
	return router, stub
}

// The literal routes (/my, /pending) and the id-scoped routes
// (/:id/approve, /:id/timeline) coexist in one group and each request
// reaches its own handler.
func TestRequestRoutes_Dispatch(t *testing.T) {
	router, stub := newRequestRouter()
	requestID := uuid.New()
	adminToken := bearerToken(t, model.RoleSubAdmin)

	cases := []struct {
		method   string
		path     string
		body     string
		token    string
		wantCall string
		wantCode int
	}{
		{http.MethodPost, "/api/service-requests", `{"service_id":"` + uuid.New().String() + `"}`, bearerToken(t, model.RoleCustomer), "create", http.StatusCreated},
		{http.MethodGet, "/api/service-requests/my", "", bearerToken(t, model.RoleCustomer), "my", http.StatusOK},
		{http.MethodGet, "/api/service-requests/pending", "", adminToken, "pending", http.StatusOK},
		{http.MethodPost, "/api/service-requests/" + requestID.String() + "/approve", "", adminToken, "decide", http.StatusOK},
		{http.MethodGet, "/api/service-requests/" + requestID.String() + "/timeline", "", adminToken, "timeline", http.StatusOK},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Authorization", tc.token)
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		router.ServeHTTP(w, req)

		require.Equal(t, tc.wantCode, w.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, tc.wantCall, stub.lastCall, "%s %s", tc.method, tc.path)
	}

	require.Equal(t, requestID, stub.lastRequestID)
}

func TestDecideRoute_ApproveQueryParam(t *testing.T) {
	router, stub := newRequestRouter()
	requestID := uuid.New()
	adminToken := bearerToken(t, model.RoleSubAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/service-requests/"+requestID.String()+"/approve?approve=false", nil)
	req.Header.Set("Authorization", adminToken)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, requestID, stub.lastRequestID)
	require.False(t, stub.lastApprove)
}

func TestDecideRoute_RequiresAdminRole(t *testing.T) {
	router, _ := newRequestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/service-requests/"+uuid.New().String()+"/approve", nil)
	req.Header.Set("Authorization", bearerToken(t, model.RoleCustomer))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}
