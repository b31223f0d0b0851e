package domain

import (
	"errors"
	"fmt"
)

// Category sentinels; use with NewSubSystemError for subsystem-specific errors.
var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrLimitReached  = fmt.Errorf("limit reached")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrProviderError = fmt.Errorf("provider error")
)

// Sentinel errors for the domain layer.
var (
	// Supervisor pipeline.
	ErrClassification = fmt.Errorf("routing classification failed")
	ErrUnknownAgent   = fmt.Errorf("unknown agent name")
	ErrEmptyRouting   = fmt.Errorf("empty routing result")
	ErrSpecialist     = fmt.Errorf("specialist invocation failed")
	ErrSynthesis      = fmt.Errorf("synthesis failed")

	// Specialist loop. Reaching the tool-call cap is a normal completion;
	// this sentinel only tags the forced-completion event and log line.
	ErrMaxToolCalls = fmt.Errorf("max tool calls reached")

	// Infrastructure.
	ErrProviderNotFound = fmt.Errorf("llm provider not found")
	ErrToolNotFound     = fmt.Errorf("tool not found")
	ErrEmbeddingFailed  = fmt.Errorf("embedding generation failed")
	ErrRateLimit        = fmt.Errorf("rate limit exceeded")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op        string // operation name (e.g., "Supervisor.Route")
	Err       error  // underlying sentinel or wrapped error
	Detail    string // human-readable detail
	SubSystem string // subsystem identifier (e.g., "goal", "healthdata"); used for ErrorCode dispatch
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// NewSubSystemError creates a DomainError tagged with a subsystem for ErrorCode
// dispatch. Use this with category sentinels (ErrNotFound, ErrInvalidInput, etc.)
// so that ErrorCodeOf can map the combination of sentinel + subsystem to a
// specific ErrorCode.
func NewSubSystemError(subsystem, op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail, SubSystem: subsystem}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

// Error codes. Every sentinel error maps to exactly one code.
const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeClassification   ErrorCode = "CLASSIFICATION_FAILED"
	CodeUnknownAgent     ErrorCode = "UNKNOWN_AGENT"
	CodeEmptyRouting     ErrorCode = "EMPTY_ROUTING"
	CodeSpecialist       ErrorCode = "SPECIALIST_FAILED"
	CodeSynthesis        ErrorCode = "SYNTHESIS_FAILED"
	CodeMaxToolCalls     ErrorCode = "MAX_TOOL_CALLS"
	CodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	CodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	CodeEmbeddingFailed  ErrorCode = "EMBEDDING_FAILED"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"

	// Subsystem-specific codes used by subSystemCodeMap.
	CodeGoalNotFound    ErrorCode = "GOAL_NOT_FOUND"
	CodeGoalTypeInvalid ErrorCode = "GOAL_TYPE_INVALID"
	CodeNoHealthData    ErrorCode = "NO_HEALTH_DATA"
	CodeToolArgsInvalid ErrorCode = "TOOL_ARGS_INVALID"

	// Category error codes: fallback codes when no subsystem-specific code matches.
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeLimitReached  ErrorCode = "LIMIT_REACHED"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	// Category sentinels (fallback codes).
	ErrNotFound:      CodeNotFound,
	ErrTimeout:       CodeTimeout,
	ErrLimitReached:  CodeLimitReached,
	ErrInvalidInput:  CodeInvalidInput,
	ErrProviderError: CodeProviderError,

	// Active sentinels.
	ErrClassification:   CodeClassification,
	ErrUnknownAgent:     CodeUnknownAgent,
	ErrEmptyRouting:     CodeEmptyRouting,
	ErrSpecialist:       CodeSpecialist,
	ErrSynthesis:        CodeSynthesis,
	ErrMaxToolCalls:     CodeMaxToolCalls,
	ErrProviderNotFound: CodeProviderNotFound,
	ErrToolNotFound:     CodeToolNotFound,
	ErrEmbeddingFailed:  CodeEmbeddingFailed,
	ErrRateLimit:        CodeRateLimit,
	ErrConfigLoad:       CodeConfigLoad,
}

// subSystemCodeMap maps (category sentinel, subsystem) pairs to specific
// ErrorCodes, so NewSubSystemError-based errors resolve to precise monitoring
// codes without needing one sentinel per case.
var subSystemCodeMap = map[error]map[string]ErrorCode{
	ErrNotFound: {
		"goal":       CodeGoalNotFound,
		"healthdata": CodeNoHealthData,
	},
	ErrInvalidInput: {
		"goal": CodeGoalTypeInvalid,
		"tool": CodeToolArgsInvalid,
	},
	ErrProviderError: {
		"embedding": CodeEmbeddingFailed,
	},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// For DomainErrors with a SubSystem, it also checks the subSystemCodeMap
// to resolve category sentinels to specific codes.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	// Unwrap DomainError to check its inner sentinel and subsystem.
	var de *DomainError
	if errors.As(err, &de) {
		if de.SubSystem != "" {
			if subsysMap, ok := subSystemCodeMap[de.Err]; ok {
				if code, ok := subsysMap[de.SubSystem]; ok {
					return code
				}
			}
		}
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	// Walk the error chain with errors.Is.
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
// If SubSystem is set, checks the subSystemCodeMap for a specific code.
func (e *DomainError) Code() ErrorCode {
	if e.SubSystem != "" {
		if subsysMap, ok := subSystemCodeMap[e.Err]; ok {
			if code, ok := subsysMap[e.SubSystem]; ok {
				return code
			}
		}
	}
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}
