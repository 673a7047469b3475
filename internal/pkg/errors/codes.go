package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrTooManyRequests = 1003
	ErrBadRequest      = 1004
	ErrServiceUnavail  = 1005

	// Trend analysis errors (2000-2999)
	ErrTrendInvalidKeyword   = 2000
	ErrTrendNoData           = 2001
	ErrTrendRateLimited      = 2002
	ErrTrendInsufficientData = 2003
	ErrTrendUnavailable      = 2004
	ErrTrendProviderFailed   = 2005
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Trend analysis errors
	ErrTrendInvalidKeyword:   {ErrTrendInvalidKeyword, http.StatusBadRequest, "Keyword cannot be empty"},
	ErrTrendNoData:           {ErrTrendNoData, http.StatusNotFound, "No trend data found for keyword"},
	ErrTrendRateLimited:      {ErrTrendRateLimited, http.StatusTooManyRequests, "Trend provider rate limit reached, please try again in a few minutes"},
	ErrTrendInsufficientData: {ErrTrendInsufficientData, http.StatusBadGateway, "Insufficient data points for analysis"},
	ErrTrendUnavailable:      {ErrTrendUnavailable, http.StatusServiceUnavailable, "Trend provider unavailable"},
	ErrTrendProviderFailed:   {ErrTrendProviderFailed, http.StatusBadGateway, "Trend provider request failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
