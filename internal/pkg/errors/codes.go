package errors

import (
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
	ErrInternalServer = 1000
	ErrInvalidParams  = 1001
	ErrNotFound       = 1002
	ErrUnauthorized   = 1003
	ErrForbidden      = 1004
	ErrConflict       = 1005

	// File manager errors (4000-4999)
	ErrFileNotFound          = 4000
	ErrFileSourceMissing     = 4001
	ErrFileStorageFailed     = 4002
	ErrFileOwnerTypeUnknown  = 4003
	ErrFileStorageUnset      = 4004
	ErrFileLinkSchemaInvalid = 4005
	ErrFilePresetUnknown     = 4006
	ErrFileNotOwner          = 4007
	ErrFileSessionFailed     = 4008
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer: {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:  {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:       {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:   {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:      {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:       {ErrConflict, http.StatusConflict, "Resource conflict"},

	// File manager errors
	ErrFileNotFound:          {ErrFileNotFound, http.StatusNotFound, "File not found"},
	ErrFileSourceMissing:     {ErrFileSourceMissing, http.StatusBadRequest, "Source file does not exist"},
	ErrFileStorageFailed:     {ErrFileStorageFailed, http.StatusInternalServerError, "Storage operation failed"},
	ErrFileOwnerTypeUnknown:  {ErrFileOwnerTypeUnknown, http.StatusInternalServerError, "Owner type is not registered"},
	ErrFileStorageUnset:      {ErrFileStorageUnset, http.StatusInternalServerError, "Storage is not configured"},
	ErrFileLinkSchemaInvalid: {ErrFileLinkSchemaInvalid, http.StatusInternalServerError, "Link schema is not configured"},
	ErrFilePresetUnknown:     {ErrFilePresetUnknown, http.StatusInternalServerError, "Preset is not registered"},
	ErrFileNotOwner:          {ErrFileNotOwner, http.StatusForbidden, "File does not belong to this owner"},
	ErrFileSessionFailed:     {ErrFileSessionFailed, http.StatusInternalServerError, "Upload session operation failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}
