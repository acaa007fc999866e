package services

// AuthorizationError indicates the caller is not allowed to perform the
// operation. It is returned before any provider call is made.
type AuthorizationError struct {
	Code    string
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// ValidationError indicates malformed input caught before any provider
// call.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderError carries a failure reported by the external auth backend
// or the profile store. The message is surfaced to the client verbatim.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

func notAdmin(message string) *AuthorizationError {
	return &AuthorizationError{Code: "NOT_ADMIN", Message: message}
}

func providerError(err error) *ProviderError {
	return &ProviderError{Code: "PROVIDER_ERROR", Message: err.Error()}
}

func storeError(err error) *ProviderError {
	return &ProviderError{Code: "STORE_ERROR", Message: err.Error()}
}
