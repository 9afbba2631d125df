package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/service-requests")
	{
		requests.POST("", middleware.RequireRole(model.RoleCustomer, model.RoleDeveloper), h.CreateRequest)
		requests.GET("/my", middleware.RequireAuth(), h.MyRequests)
		requests.GET("/pending", middleware.RequireRole(model.RoleSubAdmin, model.RoleSuperAdmin), h.PendingRequests)
		requests.POST("/:id/approve", middleware.RequireRole(model.RoleSubAdmin, model.RoleSuperAdmin), h.Decide)
		requests.GET("/:id/timeline", middleware.RequireAuth(), h.Timeline)
	}
}

// CreateRequest submits a new service request
// @Summary      Create service request
// @Description  Creates a PENDING service request for the authenticated user and records the REQUESTED timeline entry
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.ServiceRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/service-requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.CreateRequest(c.Request.Context(), userID, req)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// MyRequests lists the authenticated user's service requests
// @Summary      My service requests
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ServiceRequestResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/service-requests/my [get]
func (h *RequestHandler) MyRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	result, err := h.requestService.RequestsForUser(c.Request.Context(), userID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// PendingRequests lists all requests still awaiting a decision
// @Summary      Pending service requests
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ServiceRequestResponse}
// @Router       /api/service-requests/pending [get]
func (h *RequestHandler) PendingRequests(c *gin.Context) {
	result, err := h.requestService.PendingRequests(c.Request.Context())
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Decide approves or rejects a pending service request
// @Summary      Decide service request
// @Description  Transitions a PENDING request to APPROVED or REJECTED; deciding an already-decided request returns 409
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true   "Request ID"
// @Param        approve  query     bool    false  "true to approve, false to reject (default true)"
// @Success      200      {object}  response.Response{data=service.ServiceRequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/service-requests/{id}/approve [post]
func (h *RequestHandler) Decide(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	approverID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	approve, parseErr := strconv.ParseBool(c.DefaultQuery("approve", "true"))
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid approve parameter"))
		return
	}

	result, err := h.requestService.Decide(c.Request.Context(), requestID, approverID, approve)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Timeline returns a request's audit trail, oldest entry first
// @Summary      Service request timeline
// @Tags         service-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.TimelineEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/service-requests/{id}/timeline [get]
func (h *RequestHandler) Timeline(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	result, err := h.requestService.Timeline(c.Request.Context(), requestID)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
