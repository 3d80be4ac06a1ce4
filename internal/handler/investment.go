package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/segyhp/investment-engine/internal/domain"
	"github.com/segyhp/investment-engine/internal/service"
	"github.com/segyhp/investment-engine/pkg/response"
)

type InvestmentHandler struct {
	service   *service.InvestmentService
	validator *validator.Validate
}

func NewInvestmentHandler(service *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateInvestment handles POST /api/v1/investments
func (h *InvestmentHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	investment, err := h.service.CreateInvestment(r.Context(), &req, time.Now().UTC())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, domain.CreateInvestmentResponse{Investment: investment})
}

// GetInvestment handles GET /api/v1/investments/{investmentId}
func (h *InvestmentHandler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	investmentID := mux.Vars(r)["investmentId"]

	investment, err := h.service.GetInvestment(r.Context(), investmentID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, investment)
}

// GetSchedule handles GET /api/v1/investments/{investmentId}/schedule
func (h *InvestmentHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	investmentID := mux.Vars(r)["investmentId"]

	investment, err := h.service.GetInvestment(r.Context(), investmentID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.ScheduleResponse{
		InvestmentID: investment.InvestmentID,
		Schedule:     investment.Schedule,
	})
}

// ApplyPayment handles POST /api/v1/investments/{investmentId}/payments
func (h *InvestmentHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	investmentID := mux.Vars(r)["investmentId"]

	var req domain.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	payment, investment, err := h.service.ApplyPayment(r.Context(), investmentID, &req, time.Now().UTC())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.ApplyPaymentResponse{
		Payment:    payment,
		Investment: investment,
	})
}

// CloseInvestment handles POST /api/v1/investments/{investmentId}/close
func (h *InvestmentHandler) CloseInvestment(w http.ResponseWriter, r *http.Request) {
	investmentID := mux.Vars(r)["investmentId"]

	investment, err := h.service.CloseInvestment(r.Context(), investmentID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, investment)
}

// MarkDefaulted handles POST /api/v1/investments/{investmentId}/default
func (h *InvestmentHandler) MarkDefaulted(w http.ResponseWriter, r *http.Request) {
	investmentID := mux.Vars(r)["investmentId"]

	investment, err := h.service.MarkDefaulted(r.Context(), investmentID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, investment)
}

// InvestorSummary handles GET /api/v1/investors/{investorId}/summary
func (h *InvestmentHandler) InvestorSummary(w http.ResponseWriter, r *http.Request) {
	investorID := mux.Vars(r)["investorId"]

	summary, err := h.service.InvestorSummary(r.Context(), investorID, time.Now().UTC())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, summary)
}
