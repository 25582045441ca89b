package handlers

import (
	"net/http"
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/pkg/dto"
)

const fieldRequired = "This field is required."

type ContactHandler struct {
	contactService ContactServiceInterface
	emailService   EmailServiceInterface
	notifyTo       string
	logger         zerolog.Logger
}

func NewContactHandler(contactService ContactServiceInterface, emailService EmailServiceInterface, notifyTo string, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		emailService:   emailService,
		notifyTo:       notifyTo,
		logger:         logger,
	}
}

func validateContact(req *dto.ContactRequest) map[string][]string {
	errs := map[string][]string{}
	if strings.TrimSpace(req.FirstName) == "" {
		errs["first_name"] = []string{fieldRequired}
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs["last_name"] = []string{fieldRequired}
	}
	switch email := strings.TrimSpace(req.Email); {
	case email == "":
		errs["email"] = []string{fieldRequired}
	case !validEmail(email):
		errs["email"] = []string{"Enter a valid email address."}
	}
	if strings.TrimSpace(req.Message) == "" {
		errs["message"] = []string{fieldRequired}
	}
	return errs
}

func (h *ContactHandler) Submit(c *drift.Context) {
	var req dto.ContactRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.ContactErrorResponse{
			Message: "Invalid request body",
			Errors:  map[string][]string{},
		})
		return
	}

	if errs := validateContact(&req); len(errs) > 0 {
		_ = c.JSON(http.StatusBadRequest, dto.ContactErrorResponse{
			Message: "Please correct the errors below",
			Errors:  errs,
		})
		return
	}

	submission, err := h.contactService.Create(c.Request.Context(),
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName),
		strings.TrimSpace(req.Email), req.Message)
	if err != nil {
		internalError(c, h.logger, err, "failed to store contact submission")
		return
	}

	h.notify(submission)

	_ = c.JSON(http.StatusCreated, dto.ContactCreatedResponse{
		Message: "Thank you for your message! We will get back to you soon.",
		Data: dto.ContactSubmissionResponse{
			ID:        submission.ID,
			FirstName: submission.FirstName,
			LastName:  submission.LastName,
			Email:     submission.Email,
			Message:   submission.Message,
			CreatedAt: submission.CreatedAt,
		},
	})
}

// notify is best effort; the submission is already stored.
func (h *ContactHandler) notify(submission *models.ContactSubmission) {
	if h.notifyTo == "" {
		return
	}
	if err := h.emailService.SendContactNotification(h.notifyTo, submission); err != nil {
		h.logger.Warn().Err(err).Str("submission_id", submission.ID.String()).Msg("contact notification failed")
	}
}
