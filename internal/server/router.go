package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/supportline/complaintdesk/internal/complaints"
	"go.uber.org/zap"
)

var errMissingComplaintsService = errors.New("complaints service dependency required")

// Response messages are part of the wire contract consumed by the dashboard;
// the invalid-status wording is surfaced verbatim in the edit UI.
const (
	messageListFailed    = "Error fetching customer data"
	messageUpdateFailed  = "Error updating customer data"
	messageCreateFailed  = "Error adding customer data"
	messageInvalidStatus = "Invalid status. Status must be 'Pending' or 'Completed'."
	messageNotFound      = "Customer not found"
	messageUpdated       = "Customer updated successfully"
	messageCreated       = "Customer data added successfully"
)

type Dependencies struct {
	ComplaintsService *complaints.Service
	Logger            *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.ComplaintsService == nil {
		return nil, errMissingComplaintsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		complaintsService: deps.ComplaintsService,
		logger:            logger,
	}

	router.GET("/api/customers", handler.handleListCustomers)
	router.POST("/api/customers", handler.handleCreateCustomer)
	router.PATCH("/api/customers/:id", handler.handleUpdateCustomer)

	return router, nil
}

type httpHandler struct {
	complaintsService *complaints.Service
	logger            *zap.Logger
}

func (h *httpHandler) handleListCustomers(c *gin.Context) {
	records, err := h.complaintsService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list complaints", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": messageListFailed})
		return
	}

	if records == nil {
		records = []complaints.Complaint{}
	}
	c.JSON(http.StatusOK, records)
}

type updateRequestPayload struct {
	Issue  *string `json:"issue"`
	Status *string `json:"status"`
}

type updateResponsePayload struct {
	Message         string               `json:"message"`
	UpdatedCustomer complaints.Complaint `json:"updatedCustomer"`
}

func (h *httpHandler) handleUpdateCustomer(c *gin.Context) {
	id, err := complaints.NewComplaintID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": messageNotFound})
		return
	}

	var request updateRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": messageUpdateFailed})
		return
	}

	update := complaints.UpdateRequest{Issue: request.Issue}
	if request.Status != nil {
		status, err := complaints.ParseStatus(*request.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": messageInvalidStatus})
			return
		}
		update.Status = &status
	}

	updated, err := h.complaintsService.Update(c.Request.Context(), id, update)
	switch {
	case errors.Is(err, complaints.ErrComplaintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": messageNotFound})
		return
	case errors.Is(err, complaints.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"message": messageInvalidStatus})
		return
	case err != nil:
		h.logger.Error("failed to update complaint", zap.String("complaint_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": messageUpdateFailed})
		return
	}

	c.JSON(http.StatusOK, updateResponsePayload{
		Message:         messageUpdated,
		UpdatedCustomer: updated,
	})
}

type createRequestPayload struct {
	Mobile   string  `json:"mobile"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Product  string  `json:"product"`
	Issue    string  `json:"issue"`
	Priority string  `json:"priority"`
	Status   *string `json:"status"`
}

type createResponsePayload struct {
	Message     string               `json:"message"`
	NewCustomer complaints.Complaint `json:"newCustomer"`
}

func (h *httpHandler) handleCreateCustomer(c *gin.Context) {
	var request createRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": messageCreateFailed})
		return
	}

	create := complaints.CreateRequest{
		Mobile:   request.Mobile,
		Name:     request.Name,
		Address:  request.Address,
		Product:  request.Product,
		Issue:    request.Issue,
		Priority: request.Priority,
	}
	if request.Status != nil {
		status, err := complaints.ParseStatus(*request.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": messageInvalidStatus})
			return
		}
		create.Status = &status
	}

	created, err := h.complaintsService.Create(c.Request.Context(), create)
	if err != nil {
		var serviceErr *complaints.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.Code() == "complaints.create.invalid_request" {
			c.JSON(http.StatusBadRequest, gin.H{"message": messageCreateFailed})
			return
		}
		h.logger.Error("failed to create complaint", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": messageCreateFailed})
		return
	}

	c.JSON(http.StatusCreated, createResponsePayload{
		Message:     messageCreated,
		NewCustomer: created,
	})
}
