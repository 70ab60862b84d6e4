package handler

import (
	"encoding/json"
	"net/http"

	"github.com/astraschool/astra-platform/internal/observability"
	"github.com/astraschool/astra-platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CompanyHandler struct {
	companies   *service.CompanyService
	investments *service.InvestmentService
	earnings    *service.EarningsService
	admins      *service.AdminService
}

func NewCompanyHandler(companies *service.CompanyService, investments *service.InvestmentService, earnings *service.EarningsService, admins *service.AdminService) *CompanyHandler {
	return &CompanyHandler{
		companies:   companies,
		investments: investments,
		earnings:    earnings,
		admins:      admins,
	}
}

type createCompanyRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	FundingGoal        int64  `json:"funding_goal"`
	InvestorPoolBps    int32  `json:"investor_pool_bps"`
	FounderAllocations []struct {
		Email       string `json:"email"`
		BasisPoints int32  `json:"basis_points"`
	} `json:"founder_allocations"`
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if req.Name == "" {
		RespondError(w, r, http.StatusBadRequest, "companies/missing-name", "name is required")
		return
	}
	if req.FundingGoal <= 0 {
		RespondError(w, r, http.StatusBadRequest, "companies/invalid-goal", "funding_goal must be positive")
		return
	}
	if req.InvestorPoolBps < 0 || req.InvestorPoolBps > 10000 {
		RespondError(w, r, http.StatusBadRequest, "companies/invalid-pool", "investor_pool_bps must be between 0 and 10000")
		return
	}
	for _, alloc := range req.FounderAllocations {
		if alloc.BasisPoints <= 0 {
			RespondError(w, r, http.StatusBadRequest, "companies/invalid-allocation", "founder allocations must be positive basis points")
			return
		}
	}

	// The engine takes the admin set as an explicit input.
	adminIDs, err := h.admins.ActiveAdminIDs(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	params := service.CreateCompanyParams{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		FundingGoal:     req.FundingGoal,
		InvestorPoolBps: req.InvestorPoolBps,
		AdminIDs:        adminIDs,
		CreatedByID:     actorID,
	}
	for _, alloc := range req.FounderAllocations {
		params.FounderAllocations = append(params.FounderAllocations, service.FounderAllocation{
			Email:       alloc.Email,
			BasisPoints: alloc.BasisPoints,
		})
	}

	company, err := h.companies.Create(r.Context(), params)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, company)
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}
	company, err := h.companies.Get(r.Context(), companyID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, company)
}

// Delete soft-deletes a company and refunds its investors. Admin only.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}
	result, err := h.companies.Delete(r.Context(), companyID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

func (h *CompanyHandler) Invest(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if req.Amount <= 0 {
		RespondError(w, r, http.StatusBadRequest, "ledger/invalid-amount", "amount must be positive")
		return
	}

	granted, err := h.investments.Invest(r.Context(), companyID, actorID, req.Amount)
	if err != nil {
		observability.IncrementLedgerOperation("invest", "failed")
		RespondServiceError(w, r, err)
		return
	}
	observability.IncrementLedgerOperation("invest", "success")
	RespondJSON(w, http.StatusCreated, map[string]int32{"basis_points_granted": granted})
}

// Distribute pays out company earnings. Admin only.
func (h *CompanyHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		GrossAmount int64 `json:"gross_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "invalid request body")
		return
	}
	if req.GrossAmount <= 0 {
		RespondError(w, r, http.StatusBadRequest, "ledger/invalid-amount", "gross_amount must be positive")
		return
	}

	adminIDs, err := h.admins.ActiveAdminIDs(r.Context())
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}

	result, err := h.earnings.Distribute(r.Context(), companyID, req.GrossAmount, actorID, adminIDs)
	if err != nil {
		observability.IncrementLedgerOperation("distribute", "failed")
		RespondServiceError(w, r, err)
		return
	}
	observability.IncrementLedgerOperation("distribute", "success")
	RespondJSON(w, http.StatusOK, result)
}

func (h *CompanyHandler) Equity(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}
	equity, err := h.companies.Equity(r.Context(), companyID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, equity)
}

func (h *CompanyHandler) Investments(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}
	investments, err := h.companies.Investments(r.Context(), companyID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, investments)
}

func (h *CompanyHandler) Payouts(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(w, r)
	if !ok {
		return
	}
	payouts, err := h.companies.Payouts(r.Context(), companyID)
	if err != nil {
		RespondServiceError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, payouts)
}

func companyIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-id", "invalid company id")
		return uuid.Nil, false
	}
	return companyID, true
}
