package http

const (
	CodeUnknown          = "UNKNOWN"
	CodeInternal         = "INTERNAL"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeBodyTooLarge     = "BODY_TOO_LARGE"
	CodeUnavailable      = "UNAVAILABLE"
)
