package controller

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactController_Submit(t *testing.T) {
	h := newHarness(t)

	w := h.postForm("/contact", url.Values{
		"name":    {"  Ann "},
		"email":   {"ann@example.com"},
		"phone":   {"555-0101"},
		"country": {"Canada"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/contact", w.Header().Get("Location"))

	require.Len(t, h.remote.contacts, 1)
	got := h.remote.contacts[0]
	assert.Equal(t, "Ann", got.Username)
	assert.Equal(t, "555-0101", got.Phone)
	assert.Equal(t, "Canada", got.Country)
	assert.Equal(t, "ann@example.com", got.Email)

	assert.Contains(t, h.get("/contact").Body.String(), "Thanks Ann")
}

func TestContactController_Submit_Incomplete(t *testing.T) {
	h := newHarness(t)

	w := h.postForm("/contact", url.Values{
		"name":  {"Ann"},
		"email": {"ann@example.com"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Please provide name, phone, and country.")
	assert.Contains(t, body, `value="ann@example.com"`)
	assert.Empty(t, h.remote.contacts)
}

func TestContactController_Submit_JSON(t *testing.T) {
	h := newHarness(t)

	w := h.postJSON("/contact", `{"name":"Bo","phone":"1","country":"NZ"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Thanks Bo"}`, w.Body.String())

	w = h.postJSON("/contact", `{"name":"Bo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_REQUIRED")
}
