package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ikkim/storefront/internal/app/service"
	"github.com/ikkim/storefront/internal/cart"
	"github.com/ikkim/storefront/internal/session"
	"github.com/ikkim/storefront/internal/storage"
	"github.com/ikkim/storefront/pkg/storefrontapi"
)

// ErrorInfo is the user-facing form of an error
type ErrorInfo struct {
	Status  int
	Code    string // see codes.go
	Message string
}

// ParseError maps an error onto a status, code and message safe to show.
// context names the failed action, e.g. "update cart".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: "Something went wrong. Please try again.",
		}
	}

	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: CartItemNotFound, Message: "That item is no longer in your cart."}

	case errors.Is(err, service.ErrCartEmpty):
		return ErrorInfo{Status: http.StatusBadRequest, Code: CartEmpty, Message: "Your cart is empty!"}

	case errors.Is(err, service.ErrInvalidCartInput), errors.Is(err, cart.ErrInvalidProduct):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: "Invalid product."}

	case errors.Is(err, service.ErrContactIncomplete):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: service.ContactIncompleteMessage}

	case errors.Is(err, service.ErrMissingCredentials):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "Please enter username and password."}

	case errors.Is(err, service.ErrNotAdmin):
		return ErrorInfo{Status: http.StatusUnauthorized, Code: AuthUnauthorized, Message: "Admin sign-in required."}

	case errors.Is(err, storefrontapi.ErrNetwork):
		return ErrorInfo{Status: http.StatusBadGateway, Code: APIUnavailable, Message: storefrontapi.Message(err)}

	case errors.Is(err, storefrontapi.ErrUnauthorized):
		code := AuthUnauthorized
		if ctx := strings.ToLower(context); strings.Contains(ctx, "login") || strings.Contains(ctx, "log in") {
			code = AuthInvalidCredentials
		}
		return ErrorInfo{Status: http.StatusUnauthorized, Code: code, Message: storefrontapi.Message(err)}

	case errors.Is(err, storefrontapi.ErrNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: APINotFound, Message: storefrontapi.Message(err)}

	case errors.Is(err, storefrontapi.ErrRequestFailed), errors.Is(err, storefrontapi.ErrInvalidResponse):
		return ErrorInfo{Status: http.StatusBadGateway, Code: APIRequestFailed, Message: storefrontapi.Message(err)}

	case errors.Is(err, session.ErrInvalidSessionID), errors.Is(err, storage.ErrInvalidNamespace), errors.Is(err, storage.ErrInvalidKey):
		return ErrorInfo{Status: http.StatusBadRequest, Code: AuthSessionInvalid, Message: "Your session is invalid. Please reload the page."}

	case errors.Is(err, cart.ErrPersist):
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalStorageError,
			Message: "Your cart changed but could not be saved.",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// getDefaultErrorMessage words the fallback after the failed action
func getDefaultErrorMessage(context string) string {
	if context == "" {
		return "Something went wrong. Please try again."
	}
	return "Could not " + context + ". Please try again."
}

// ParseAndRespond writes the parsed error as JSON
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
