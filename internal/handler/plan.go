package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/investment-engine/internal/domain"
	"github.com/segyhp/investment-engine/internal/service"
	"github.com/segyhp/investment-engine/pkg/response"
)

type PlanHandler struct {
	service   *service.InvestmentService
	validator *validator.Validate
}

func NewPlanHandler(service *service.InvestmentService) *PlanHandler {
	return &PlanHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreatePlan handles POST /api/v1/plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, plan)
}

// GetPlan handles GET /api/v1/plans/{planId}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}

	plan, err := h.service.GetPlan(r.Context(), planID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, plan)
}

// PreviewPlan handles POST /api/v1/plans/{planId}/preview
func (h *PlanHandler) PreviewPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}

	var req domain.PreviewPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	preview, err := h.service.PreviewPlan(r.Context(), planID, &req, time.Now().UTC())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, preview)
}

func (h *PlanHandler) planID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["planId"]
	planID, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid plan ID", err)
		return uuid.Nil, false
	}
	return planID, true
}
