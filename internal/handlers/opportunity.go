package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/internal/middleware"
	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/services"
	"github.com/zarenu/zare-api/pkg/dto"
)

type OpportunityHandler struct {
	opportunityService OpportunityServiceInterface
	logger             zerolog.Logger
}

func NewOpportunityHandler(opportunityService OpportunityServiceInterface, logger zerolog.Logger) *OpportunityHandler {
	return &OpportunityHandler{opportunityService: opportunityService, logger: logger}
}

func (h *OpportunityHandler) List(c *drift.Context) {
	opportunities, err := h.opportunityService.List(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, err, "failed to list opportunities")
		return
	}

	resp := make([]dto.OpportunityResponse, 0, len(opportunities))
	for i := range opportunities {
		resp = append(resp, toOpportunityResponse(&opportunities[i]))
	}

	_ = c.JSON(http.StatusOK, dto.OpportunityListResponse{
		Success:       true,
		Count:         len(resp),
		Opportunities: resp,
	})
}

func (h *OpportunityHandler) Create(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		notAuthenticated(c, h.logger)
		return
	}

	var req dto.CreateOpportunityRequest
	if err := c.BindJSON(&req); err != nil {
		writeFailure(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string][]string{}
	for field, v := range map[string]string{
		"title":        req.Title,
		"description":  req.Description,
		"organization": req.Organization,
		"location":     req.Location,
	} {
		if strings.TrimSpace(v) == "" {
			errs[field] = []string{fieldRequired}
		}
	}
	if req.HoursRequired < 0 {
		errs["hours_required"] = []string{"Ensure this value is greater than or equal to 0."}
	}
	if len(errs) > 0 {
		_ = c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Success: false, Error: errs})
		return
	}

	opportunity, err := h.opportunityService.Create(c.Request.Context(), &models.VolunteerOpportunity{
		Title:          req.Title,
		Description:    req.Description,
		Organization:   req.Organization,
		Location:       req.Location,
		SkillsRequired: req.SkillsRequired,
		Deadline:       req.Deadline,
		HoursRequired:  req.HoursRequired,
		CreatedBy:      user.ID,
	})
	if err != nil {
		internalError(c, h.logger, err, "failed to create opportunity")
		return
	}
	opportunity.Creator = user

	_ = c.JSON(http.StatusCreated, dto.OpportunityEnvelope{
		Success:     true,
		Message:     "Opportunity created successfully",
		Opportunity: toOpportunityResponse(opportunity),
	})
}

// Apply records the caller's application. The body is optional; start_date
// defaults to now.
func (h *OpportunityHandler) Apply(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		notAuthenticated(c, h.logger)
		return
	}

	opportunityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeFailure(c, http.StatusNotFound, "Opportunity not found")
		return
	}

	var req dto.ApplyRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			writeFailure(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	application, err := h.opportunityService.Apply(c.Request.Context(), user.ID, opportunityID, startDate)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			writeFailure(c, http.StatusNotFound, "Opportunity not found")
		case errors.Is(err, services.ErrAlreadyApplied):
			writeFailure(c, http.StatusBadRequest, "You have already applied to this opportunity")
		default:
			internalError(c, h.logger, err, "failed to apply to opportunity")
		}
		return
	}

	h.logger.Info().Str("user_id", user.ID.String()).Str("opportunity_id", opportunityID.String()).Msg("volunteer application")

	_ = c.JSON(http.StatusCreated, dto.ApplicationResponse{
		Success:     true,
		Message:     "Application submitted successfully",
		Application: toHistoryResponse(application, user),
	})
}

func (h *OpportunityHandler) History(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		notAuthenticated(c, h.logger)
		return
	}

	history, err := h.opportunityService.History(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, h.logger, err, "failed to load history")
		return
	}

	resp := make([]dto.HistoryResponse, 0, len(history))
	for i := range history {
		resp = append(resp, toHistoryResponse(&history[i], user))
	}

	_ = c.JSON(http.StatusOK, dto.HistoryListResponse{
		Success: true,
		Count:   len(resp),
		History: resp,
	})
}
