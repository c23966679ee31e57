package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rental/internal/domain"
	"rental/internal/service"
)

// SessionHandler handles HTTP requests for booking sessions.
type SessionHandler struct {
	sessionService *service.SessionService
	receiptService *service.ReceiptService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, receiptService *service.ReceiptService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		receiptService: receiptService,
	}
}

// SelectVehicleRequest is the HTTP request body for choosing a vehicle and dates.
type SelectVehicleRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SubmitDetailsRequest is the HTTP request body for the customer details form.
type SubmitDetailsRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ChoosePaymentRequest is the HTTP request body for choosing a payment method.
type ChoosePaymentRequest struct {
	PaymentMethod string `json:"payment_method"` // Card, Mobile Payment, Cash on Delivery
}

// DraftResponse is the priced, unconfirmed booking.
type DraftResponse struct {
	VehicleID   string `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`
	PricePerDay int64  `json:"price_per_day"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TotalDays   int    `json:"total_days"`
	TotalPrice  int64  `json:"total_price"`
}

// ConfirmationResponse is the HTTP response for a confirmed booking.
type ConfirmationResponse struct {
	BookingID     string                 `json:"booking_id"`
	VehicleID     string                 `json:"vehicle_id"`
	VehicleName   string                 `json:"vehicle_name"`
	DriverContact string                 `json:"driver_contact"`
	StartDate     string                 `json:"start_date"`
	EndDate       string                 `json:"end_date"`
	TotalDays     int                    `json:"total_days"`
	TotalPrice    int64                  `json:"total_price"`
	Customer      domain.CustomerDetails `json:"customer"`
	PaymentMethod string                 `json:"payment_method"`
	PaymentStatus string                 `json:"payment_status"`
	PaymentNote   string                 `json:"payment_note"`
	BookedAt      string                 `json:"booked_at"`
}

// SessionResponse is the HTTP response for a booking session.
type SessionResponse struct {
	ID            string                  `json:"id"`
	State         string                  `json:"state"`
	Processing    bool                    `json:"processing"`
	Draft         *DraftResponse          `json:"draft,omitempty"`
	Customer      *domain.CustomerDetails `json:"customer,omitempty"`
	PaymentMethod string                  `json:"payment_method,omitempty"`
	Confirmation  *ConfirmationResponse   `json:"confirmation,omitempty"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	session, err := h.sessionService.Start(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, h.toSessionResponse(session))
}

// Get handles GET /v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toSessionResponse(session))
}

// SelectVehicle handles POST /v1/sessions/:id/vehicle
func (h *SessionHandler) SelectVehicle(c *gin.Context) {
	var req SelectVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	session, err := h.sessionService.SelectVehicle(c.Request.Context(), service.SelectVehicleRequest{
		SessionID: c.Param("id"),
		VehicleID: req.VehicleID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toSessionResponse(session))
}

// SubmitDetails handles POST /v1/sessions/:id/details
func (h *SessionHandler) SubmitDetails(c *gin.Context) {
	var req SubmitDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	session, err := h.sessionService.SubmitDetails(c.Request.Context(), service.SubmitDetailsRequest{
		SessionID: c.Param("id"),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toSessionResponse(session))
}

// ChoosePayment handles POST /v1/sessions/:id/payment
func (h *SessionHandler) ChoosePayment(c *gin.Context) {
	var req ChoosePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	session, err := h.sessionService.ChoosePayment(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toSessionResponse(session))
}

// Confirm handles POST /v1/sessions/:id/confirm
// The request blocks for the duration of the simulated payment.
func (h *SessionHandler) Confirm(c *gin.Context) {
	conf, err := h.sessionService.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toConfirmationResponse(conf))
}

// Reset handles POST /v1/sessions/:id/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	session, err := h.sessionService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.toSessionResponse(session))
}

// Receipt handles GET /v1/sessions/:id/confirmation/receipt
func (h *SessionHandler) Receipt(c *gin.Context) {
	conf, err := h.sessionService.Confirmation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := h.receiptService.Render(conf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="booking-%s.pdf"`, conf.BookingID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *SessionHandler) toSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		State:         string(s.State),
		Processing:    s.Processing,
		Customer:      s.Customer,
		PaymentMethod: string(s.PaymentMethod),
	}
	if s.Draft != nil {
		resp.Draft = &DraftResponse{
			VehicleID:   s.Draft.Vehicle.ID,
			VehicleName: s.Draft.Vehicle.Name,
			PricePerDay: int64(s.Draft.Vehicle.PricePerDay),
			StartDate:   s.Draft.Range.Start.String(),
			EndDate:     s.Draft.Range.End.String(),
			TotalDays:   s.Draft.TotalDays,
			TotalPrice:  int64(s.Draft.TotalPrice),
		}
	}
	if s.Confirmation != nil {
		conf := h.toConfirmationResponse(s.Confirmation)
		resp.Confirmation = &conf
	}
	return resp
}

func (h *SessionHandler) toConfirmationResponse(conf *domain.BookingConfirmation) ConfirmationResponse {
	return ConfirmationResponse{
		BookingID:     conf.BookingID,
		VehicleID:     conf.Vehicle.ID,
		VehicleName:   conf.Vehicle.Name,
		DriverContact: conf.Vehicle.DriverContact,
		StartDate:     conf.Range.Start.String(),
		EndDate:       conf.Range.End.String(),
		TotalDays:     conf.TotalDays,
		TotalPrice:    int64(conf.TotalPrice),
		Customer:      conf.Customer,
		PaymentMethod: string(conf.PaymentMethod),
		PaymentStatus: string(conf.PaymentStatus),
		PaymentNote:   h.receiptService.PaymentNote(conf.PaymentMethod),
		BookedAt:      conf.BookedAt.Format(time.RFC3339),
	}
}
