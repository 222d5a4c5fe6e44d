package errors

import "fmt"

// Error values for asset pipeline operations
var (
	// ErrFormat is returned when an archive is structurally unparsable
	ErrFormat = &AssetError{Code: "FORMAT_INVALID", Message: "archive structure is not parsable"}

	// ErrUnsupportedCompression is returned when an entry uses a compression method other than stored/deflate
	ErrUnsupportedCompression = &AssetError{Code: "UNSUPPORTED_COMPRESSION", Message: "unsupported compression method"}

	// ErrDecompression is returned when an entry's deflate stream is malformed
	ErrDecompression = &AssetError{Code: "DECOMPRESSION_FAILED", Message: "failed to decompress entry"}

	// ErrUnsafePath is returned when an entry name attempts path traversal
	ErrUnsafePath = &AssetError{Code: "UNSAFE_PATH", Message: "entry name escapes the destination directory"}

	// ErrEntryNotFound is returned when a named entry is not present in the archive index
	ErrEntryNotFound = &AssetError{Code: "ENTRY_NOT_FOUND", Message: "entry not found in archive"}

	// ErrDownloadFailed is returned when a download fails after all attempts
	ErrDownloadFailed = &AssetError{Code: "DOWNLOAD_FAILED", Message: "download failed after retries"}
)

// AssetError represents a structured error in asset pipeline operations
type AssetError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *AssetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AssetError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error
func (e *AssetError) WithCause(cause error) *AssetError {
	return &AssetError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *AssetError) WithDetail(key string, value interface{}) *AssetError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &AssetError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *AssetError) WithMessage(message string) *AssetError {
	return &AssetError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// IsAssetError checks if an error is an AssetError
func IsAssetError(err error) bool {
	_, ok := err.(*AssetError)
	return ok
}

// GetErrorCode extracts the error code from an AssetError
func GetErrorCode(err error) string {
	if assetErr, ok := err.(*AssetError); ok {
		return assetErr.Code
	}
	return ""
}
