package errors

// ErrorCode is a machine-readable code attached to captured failures.
type ErrorCode string

const (
	ErrCodeValidation     ErrorCode = "validation_error"
	ErrCodeEmptyContent   ErrorCode = "empty_content"
	ErrCodeParse          ErrorCode = "parse_error"
	ErrCodeScoringDegrade ErrorCode = "scoring_degraded"
	ErrCodeTimeout        ErrorCode = "external_timeout"
	ErrCodeModelDown      ErrorCode = "model_unavailable"
	ErrCodeRateLimited    ErrorCode = "rate_limited"
	ErrCodeAggregation    ErrorCode = "aggregation_inconsistency"
)

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code        ErrorCode
	Retryable   bool
	Description string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrCodeValidation: {
		Code:        ErrCodeValidation,
		Retryable:   false,
		Description: "Input shape is malformed; entry excluded and reported",
	},
	ErrCodeEmptyContent: {
		Code:        ErrCodeEmptyContent,
		Retryable:   false,
		Description: "Transcript has no surviving messages after cleaning",
	},
	ErrCodeParse: {
		Code:        ErrCodeParse,
		Retryable:   false,
		Description: "Payload could not be decoded as JSON",
	},
	ErrCodeScoringDegrade: {
		Code:        ErrCodeScoringDegrade,
		Retryable:   false,
		Description: "Sentiment computed from the lexical signal only",
	},
	ErrCodeTimeout: {
		Code:        ErrCodeTimeout,
		Retryable:   true,
		Description: "External model call exceeded its time limit",
	},
	ErrCodeModelDown: {
		Code:        ErrCodeModelDown,
		Retryable:   true,
		Description: "Model collaborator unavailable",
	},
	ErrCodeRateLimited: {
		Code:        ErrCodeRateLimited,
		Retryable:   true,
		Description: "Model collaborator rate limit exceeded",
	},
	ErrCodeAggregation: {
		Code:        ErrCodeAggregation,
		Retryable:   false,
		Description: "Internal invariant violation; indicates a programming defect",
	},
}

// IsRetryable returns true if the given error code represents a transient, retryable error.
func IsRetryable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Retryable
	}
	return false
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
