package handlers

import (
	"net/http"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/social"
	"github.com/zarenu/zare-api/pkg/dto"
)

const internalErrorMessage = "Internal server error"

// writeError renders err as the shared failure envelope. Causes are logged,
// never returned; 500s always carry a fixed message.
func writeError(c *drift.Context, logger zerolog.Logger, err error) {
	se := social.AsError(err)
	status := se.Code.Status()

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(se.Err).Str("code", string(se.Code)).Str("path", c.Request.URL.Path).Msg(se.Message)

	msg := se.Message
	if status >= http.StatusInternalServerError && se.Code != social.CodeAuthenticationError {
		msg = internalErrorMessage
	}
	_ = c.JSON(status, dto.ErrorResponse{
		Success: false,
		Error:   msg,
		Code:    string(se.Code),
	})
}

func writeFailure(c *drift.Context, status int, msg string) {
	_ = c.JSON(status, dto.ErrorResponse{Success: false, Error: msg})
}

func internalError(c *drift.Context, logger zerolog.Logger, err error, msg string) {
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	writeFailure(c, http.StatusInternalServerError, internalErrorMessage)
}

// mediaLink turns a stored media reference into a client-facing URL.
func mediaLink(mediaURL string, ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	link := strings.TrimRight(mediaURL, "/") + "/" + strings.TrimLeft(*ref, "/")
	return &link
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		DateJoined: u.DateJoined,
		LastLogin:  u.LastLogin,
	}
}

func toProfileResponse(p *models.Profile, u *models.User, mediaURL string) dto.ProfileResponse {
	resp := dto.ProfileResponse{
		Phone:                   p.Phone,
		Bio:                     p.Bio,
		Location:                p.Location,
		ProfilePicture:          mediaLink(mediaURL, p.ProfilePicture),
		VolunteerSkills:         nonNilStrings(p.VolunteerSkills),
		VolunteerInterests:      nonNilStrings(p.VolunteerInterests),
		Availability:            nonNilMap(p.Availability),
		VolunteerHours:          p.VolunteerHours,
		Certifications:          nonNilStrings(p.Certifications),
		NotificationPreferences: nonNilMap(p.NotificationPreferences),
		PrivacySettings:         nonNilMap(p.PrivacySettings),
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
	if u != nil {
		resp.User = toUserResponse(u)
		resp.FullName = u.FullName()
	}
	return resp
}

func toOpportunityResponse(o *models.VolunteerOpportunity) dto.OpportunityResponse {
	resp := dto.OpportunityResponse{
		ID:             o.ID,
		Title:          o.Title,
		Description:    o.Description,
		Organization:   o.Organization,
		Location:       o.Location,
		SkillsRequired: nonNilStrings(o.SkillsRequired),
		DatePosted:     o.DatePosted,
		Deadline:       o.Deadline,
		HoursRequired:  o.HoursRequired,
	}
	if o.Creator != nil {
		creator := toUserResponse(o.Creator)
		resp.CreatedBy = &creator
	}
	return resp
}

func toHistoryResponse(h *models.VolunteerHistory, u *models.User) dto.HistoryResponse {
	resp := dto.HistoryResponse{
		ID:               h.ID,
		HoursContributed: h.HoursContributed,
		StartDate:        h.StartDate,
		EndDate:          h.EndDate,
		Status:           h.Status,
		Feedback:         h.Feedback,
		Rating:           h.Rating,
		CreatedAt:        h.CreatedAt,
	}
	if h.Opportunity != nil {
		resp.Opportunity = toOpportunityResponse(h.Opportunity)
	}
	if u != nil {
		user := toUserResponse(u)
		resp.User = &user
	}
	return resp
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func notAuthenticated(c *drift.Context, logger zerolog.Logger) {
	writeError(c, logger, &social.Error{Code: social.CodeNotAuthenticated, Message: "Authentication required"})
}
