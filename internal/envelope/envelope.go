package envelope

import "net/http"

// Success is the uniform wrapper returned by every service call that completes.
type Success struct {
	Message     string `json:"message"`
	StatusCode  int    `json:"statusCode"`
	Data        any    `json:"data"`
	SuccessCode string `json:"successCode"`
	IsSuccess   bool   `json:"isSuccess"`
}

// OK builds a Success envelope.
func OK(code string, statusCode int, message string, data any) *Success {
	return &Success{
		Message:     message,
		StatusCode:  statusCode,
		Data:        data,
		SuccessCode: code,
		IsSuccess:   true,
	}
}

// Error is the uniform failure wrapper. It implements the error interface so
// services can return it through a plain error result.
type Error struct {
	Message       string `json:"message"`
	StatusCode    int    `json:"statusCode"`
	ErrorCode     string `json:"errorCode"`
	Details       string `json:"details,omitempty"`
	IsOperational bool   `json:"isOperational"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError builds a classified Error envelope.
func NewError(code string, statusCode int, message string) *Error {
	return &Error{
		Message:       message,
		StatusCode:    statusCode,
		ErrorCode:     code,
		IsOperational: true,
	}
}

// WithDetails attaches the underlying cause to the envelope and returns it.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// AsError classifies an arbitrary error for rendering at the HTTP boundary.
// Anything that is not already an envelope Error becomes a generic 500 with no
// internal detail leaked.
func AsError(err error) *Error {
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return NewError(CodeInternalError, http.StatusInternalServerError, "an unexpected error occurred")
}

// Error codes used across the services. Status codes live with the
// envelope constructors at the call sites.
const (
	CodeMissingProductID   = "MISSING_PRODUCT_ID"
	CodeInvalidProductID   = "INVALID_PRODUCT_ID"
	CodeMissingProductData = "MISSING_PRODUCT_DATA"
	CodeMissingUpdateData  = "MISSING_UPDATE_DATA"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductsFetched    = "PRODUCTS_FETCHED"
	CodeProductFetched     = "PRODUCT_FETCHED"
	CodeProductCreated     = "PRODUCT_CREATED"
	CodeProductUpdated     = "PRODUCT_UPDATED"
	CodeProductDeleted     = "PRODUCT_DELETED"
	CodeProductsFetchError = "PRODUCTS_FETCH_ERROR"
	CodeProductFetchError  = "PRODUCT_FETCH_ERROR"
	CodeProductCreateError = "PRODUCT_CREATE_ERROR"
	CodeProductUpdateError = "PRODUCT_UPDATE_ERROR"
	CodeProductDeleteError = "PRODUCT_DELETE_ERROR"

	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeUserCreated     = "USER_CREATED"
	CodeUserCreateError = "USER_CREATE_ERROR"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeUserLogin       = "USER_LOGIN"

	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"
)
