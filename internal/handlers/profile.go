package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/internal/middleware"
	"github.com/zarenu/zare-api/internal/services"
	"github.com/zarenu/zare-api/pkg/dto"
)

const (
	maxBioLength      = 500
	maxLocationLength = 100
	maxPhoneLength    = 15
)

type ProfileHandler struct {
	userService    UserServiceInterface
	profileService ProfileServiceInterface
	mediaURL       string
	logger         zerolog.Logger
}

func NewProfileHandler(userService UserServiceInterface, profileService ProfileServiceInterface, mediaURL string, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		userService:    userService,
		profileService: profileService,
		mediaURL:       mediaURL,
		logger:         logger,
	}
}

func (h *ProfileHandler) GetMe(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		notAuthenticated(c, h.logger)
		return
	}

	profile, err := h.profileService.GetOrCreate(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, h.logger, err, "failed to load profile")
		return
	}

	_ = c.JSON(http.StatusOK, dto.ProfileEnvelope{
		Success: true,
		Profile: toProfileResponse(profile, user, h.mediaURL),
	})
}

func validateProfileUpdate(req *dto.UpdateProfileRequest) map[string][]string {
	errs := map[string][]string{}
	checkLen := func(field string, v *string, limit int) {
		if v != nil && utf8.RuneCountInString(*v) > limit {
			errs[field] = append(errs[field], fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
		}
	}
	checkLen("bio", req.Bio, maxBioLength)
	checkLen("location", req.Location, maxLocationLength)
	checkLen("phone", req.Phone, maxPhoneLength)

	if req.Email != nil && !validEmail(*req.Email) {
		errs["email"] = append(errs["email"], "Enter a valid email address.")
	}
	return errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (h *ProfileHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		notAuthenticated(c, h.logger)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		writeFailure(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateProfileUpdate(&req); len(errs) > 0 {
		_ = c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Success: false, Error: errs})
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.Update(ctx, userID, services.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			_ = c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
				Success: false,
				Error:   map[string][]string{"email": {"A user with that email already exists."}},
			})
			return
		}
		internalError(c, h.logger, err, "failed to update user")
		return
	}

	if _, err := h.profileService.GetOrCreate(ctx, userID); err != nil {
		internalError(c, h.logger, err, "failed to load profile")
		return
	}

	profile, err := h.profileService.Update(ctx, userID, services.ProfileUpdate{
		Phone:                   req.Phone,
		Bio:                     req.Bio,
		Location:                req.Location,
		VolunteerSkills:         req.VolunteerSkills,
		VolunteerInterests:      req.VolunteerInterests,
		Availability:            req.Availability,
		Certifications:          req.Certifications,
		NotificationPreferences: req.NotificationPreferences,
		PrivacySettings:         req.PrivacySettings,
	})
	if err != nil {
		internalError(c, h.logger, err, "failed to update profile")
		return
	}

	_ = c.JSON(http.StatusOK, dto.ProfileEnvelope{
		Success: true,
		Message: "Profile updated successfully",
		Profile: toProfileResponse(profile, user, h.mediaURL),
	})
}

// ListUsers is staff only.
func (h *ProfileHandler) ListUsers(c *drift.Context) {
	profiles, err := h.profileService.ListWithUsers(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, err, "failed to list profiles")
		return
	}

	resp := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		resp = append(resp, toProfileResponse(&profiles[i], profiles[i].User, h.mediaURL))
	}

	_ = c.JSON(http.StatusOK, dto.ProfileListResponse{
		Success:  true,
		Count:    len(resp),
		Profiles: resp,
	})
}
