package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront/internal/app/service"
	apperrors "github.com/ikkim/storefront/internal/errors"
	"github.com/ikkim/storefront/internal/middleware"
	"github.com/ikkim/storefront/internal/session"
)

const msgSubmissionFailed = "Submission failed: "

type ContactController struct {
	contactService service.ContactService
	pages          *PageController
}

func NewContactController(contactService service.ContactService, pages *PageController) *ContactController {
	return &ContactController{
		contactService: contactService,
		pages:          pages,
	}
}

type ContactRequest struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Phone   string `form:"phone" json:"phone"`
	Country string `form:"country" json:"country"`
}

// Submit forwards the contact form to the remote API
// POST /contact
func (ctrl *ContactController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	var req ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid contact request", map[string]interface{}{
			"error": err.Error(),
		})
	}
	form := service.ContactForm{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Country: req.Country,
	}

	msg, err := ctrl.contactService.Submit(c.Request.Context(), s.API, form)
	if err != nil {
		text := msgSubmissionFailed + userMessage(err, "send your message")
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrContactIncomplete) {
			text = service.ContactIncompleteMessage
			status = http.StatusBadRequest
		}

		if wantsJSON(c) {
			info := apperrors.ParseError(err, "send your message")
			apperrors.RespondWithError(c, info.Status, info.Code, text)
			return
		}

		// Re-render so the visitor keeps what they typed.
		s.AddFlash(session.FlashError, text)
		data := ctrl.pages.base(c, s, "Contact", "contact")
		data["Form"] = form
		c.HTML(status, "contact.html", data)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": msg})
		return
	}
	s.AddFlash(session.FlashSuccess, msg)
	c.Redirect(http.StatusSeeOther, "/contact")
}
