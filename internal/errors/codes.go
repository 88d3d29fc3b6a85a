package errors

// Error codes returned in JSON error bodies.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // admin sign-in required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // login rejected by the API
	AuthSessionInvalid     = "AUTH_SESSION_INVALID"     // bad session cookie

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Cart (CART_) ====================
	CartItemNotFound = "CART_ITEM_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== Remote API (API_) ====================
	APIUnavailable   = "API_UNAVAILABLE"    // network failure
	APIRequestFailed = "API_REQUEST_FAILED" // non-2xx answer
	APINotFound      = "API_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError  = "INTERNAL_SERVER_ERROR"
	InternalStorageError = "INTERNAL_STORAGE_ERROR"
)
