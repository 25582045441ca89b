package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/internal/middleware"
	"github.com/zarenu/zare-api/internal/services"
	"github.com/zarenu/zare-api/internal/social"
	"github.com/zarenu/zare-api/pkg/dto"
)

type SocialHandler struct {
	reconciler      SocialLoginInterface
	tokenService    TokenServiceInterface
	identityService IdentityServiceInterface
	profileService  ProfileServiceInterface
	mediaURL        string
	logger          zerolog.Logger
}

func NewSocialHandler(
	reconciler SocialLoginInterface,
	tokenService TokenServiceInterface,
	identityService IdentityServiceInterface,
	profileService ProfileServiceInterface,
	mediaURL string,
	logger zerolog.Logger,
) *SocialHandler {
	return &SocialHandler{
		reconciler:      reconciler,
		tokenService:    tokenService,
		identityService: identityService,
		profileService:  profileService,
		mediaURL:        mediaURL,
		logger:          logger,
	}
}

func (h *SocialHandler) Login(c *drift.Context) {
	var req dto.SocialLoginRequest
	if err := c.BindJSON(&req); err != nil {
		writeError(c, h.logger, &social.Error{
			Code:    social.CodeMissingParameters,
			Message: "Provider and access_token are required",
			Err:     err,
		})
		return
	}

	result, err := h.reconciler.Login(c.Request.Context(), social.LoginRequest{
		Provider:    req.Provider,
		AccessToken: req.AccessToken,
		UserData: social.Claims{
			ID:        req.UserData.ID,
			Email:     req.UserData.Email,
			FirstName: req.UserData.FirstName,
			LastName:  req.UserData.LastName,
			Picture:   req.UserData.Picture,
		},
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.logger.Info().
		Str("provider", result.Provider.String()).
		Str("user_id", result.User.ID.String()).
		Bool("new_user", result.IsNewUser).
		Msg("social login")

	_ = c.JSON(http.StatusOK, dto.SocialLoginResponse{
		Success: true,
		Message: "Authentication successful",
		Data: dto.SocialLoginData{
			Token:            result.Token,
			User:             toProfileResponse(result.Profile, result.User, h.mediaURL),
			IsNewUser:        result.IsNewUser,
			Provider:         result.Provider.String(),
			ProfileCompleted: result.Profile.IsCompleted(),
		},
	})
}

func (h *SocialHandler) Logout(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		notAuthenticated(c, h.logger)
		return
	}

	if err := h.tokenService.Revoke(c.Request.Context(), userID); err != nil {
		internalError(c, h.logger, err, "failed to revoke token")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

// Profile returns the caller's profile along with how they can sign in.
func (h *SocialHandler) Profile(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		notAuthenticated(c, h.logger)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.profileService.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, social.ErrNotFound) {
			writeError(c, h.logger, &social.Error{Code: social.CodeProfileNotFound, Message: "Profile not found"})
			return
		}
		internalError(c, h.logger, err, "failed to load profile")
		return
	}

	providers, err := h.identityService.Providers(ctx, user.ID)
	if err != nil {
		internalError(c, h.logger, err, "failed to load linked providers")
		return
	}

	_ = c.JSON(http.StatusOK, dto.AuthProfileResponse{
		Success: true,
		Data: dto.AuthProfileData{
			ProfileResponse: toProfileResponse(profile, user, h.mediaURL),
			SocialProviders: providers,
			HasPassword:     user.HasUsablePassword(),
		},
	})
}

// Link only validates its input; attaching a second provider to a signed-in
// account is not supported yet.
func (h *SocialHandler) Link(c *drift.Context) {
	var req dto.LinkSocialRequest
	if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Provider) == "" || req.AccessToken == "" {
		writeError(c, h.logger, &social.Error{
			Code:    social.CodeMissingParameters,
			Message: "Provider and access_token are required",
			Err:     err,
		})
		return
	}

	provider := social.Provider(strings.ToLower(req.Provider))
	_ = c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: provider.Title() + " account linking not implemented yet",
	})
}

func (h *SocialHandler) Unlink(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		notAuthenticated(c, h.logger)
		return
	}

	var req dto.UnlinkSocialRequest
	if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Provider) == "" {
		writeError(c, h.logger, &social.Error{Code: social.CodeMissingProvider, Message: "Provider is required", Err: err})
		return
	}

	name := strings.ToLower(req.Provider)
	notLinked := &social.Error{
		Code:    social.CodeAccountNotFound,
		Message: "No " + name + " account linked to your profile",
	}

	provider, ok := social.ParseProvider(name)
	if !ok {
		writeError(c, h.logger, notLinked)
		return
	}

	if err := h.identityService.Unlink(c.Request.Context(), userID, provider); err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			writeError(c, h.logger, notLinked)
			return
		}
		internalError(c, h.logger, err, "failed to unlink account")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: provider.Title() + " account unlinked successfully",
	})
}
