package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

var ErrContactIncomplete = errors.New("name, phone and country are required")

const (
	// ContactIncompleteMessage asks for the required fields.
	ContactIncompleteMessage = "Please provide name, phone, and country."
	// ContactThanks is shown when the API confirms without a message of its own.
	ContactThanks = "Thank you! We will contact you soon."
)

// ContactAPI submits contact requests
type ContactAPI interface {
	SubmitContact(ctx context.Context, req storefrontapi.ContactRequest) (*storefrontapi.ContactResponse, error)
}

// ContactForm is the contact page form
type ContactForm struct {
	Name    string
	Email   string
	Phone   string
	Country string
}

type ContactService interface {
	// Submit returns the confirmation to show the visitor.
	Submit(ctx context.Context, api ContactAPI, form ContactForm) (string, error)
}

type contactService struct{}

func NewContactService() ContactService {
	return &contactService{}
}

func (s *contactService) Submit(ctx context.Context, api ContactAPI, form ContactForm) (string, error) {
	req := storefrontapi.ContactRequest{
		Username: strings.TrimSpace(form.Name),
		Phone:    strings.TrimSpace(form.Phone),
		Country:  strings.TrimSpace(form.Country),
		Email:    strings.TrimSpace(form.Email),
	}
	if req.Username == "" || req.Phone == "" || req.Country == "" {
		return "", ErrContactIncomplete
	}

	resp, err := api.SubmitContact(ctx, req)
	if err != nil {
		logger.Error("Contact submission failed", err, map[string]interface{}{
			"country": req.Country,
		})
		return "", err
	}

	logger.Info("Contact request submitted", map[string]interface{}{
		"country": req.Country,
	})
	if resp.Message != "" {
		return resp.Message, nil
	}
	return ContactThanks, nil
}
