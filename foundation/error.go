// Package foundation holds the small load-bearing primitives the rest of
// the engine builds on: error codes, typed values, and buffers.
package foundation

import "fmt"

// ErrorCode is the engine-wide error taxonomy (spec.md §7). Zero value is
// Success so a freshly zeroed ErrorCode never reads as a failure.
type ErrorCode int32

const (
	Success ErrorCode = 0
	// EndOfStream is a positive sentinel: source/demuxer exhaustion is not a
	// failure, it is a notification that propagates as an EOS-flagged buffer.
	EndOfStream ErrorCode = 1

	ErrorUnknown ErrorCode = -(1 << 30) + iota
	ErrorUnimplemented
	ErrorAgain
	ErrorInvalidParameterValue
	ErrorInvalidParameterType
	ErrorInvalidOperation
	ErrorUnsupportedFormat
	ErrorNotExisted
	ErrorTimedOut
	ErrorNoMemory
	ErrorInvalidState
	ErrorInvalidSource
	ErrorNegotiationFailed
	ErrorNullPointer
)

var names = map[ErrorCode]string{
	Success:                    "SUCCESS",
	EndOfStream:                "END_OF_STREAM",
	ErrorUnknown:               "ERROR_UNKNOWN",
	ErrorUnimplemented:         "ERROR_UNIMPLEMENTED",
	ErrorAgain:                 "ERROR_AGAIN",
	ErrorInvalidParameterValue: "ERROR_INVALID_PARAMETER_VALUE",
	ErrorInvalidParameterType:  "ERROR_INVALID_PARAMETER_TYPE",
	ErrorInvalidOperation:      "ERROR_INVALID_OPERATION",
	ErrorUnsupportedFormat:     "ERROR_UNSUPPORTED_FORMAT",
	ErrorNotExisted:            "ERROR_NOT_EXISTED",
	ErrorTimedOut:              "ERROR_TIMED_OUT",
	ErrorNoMemory:              "ERROR_NO_MEMORY",
	ErrorInvalidState:          "ERROR_INVALID_STATE",
	ErrorInvalidSource:         "ERROR_INVALID_SOURCE",
	ErrorNegotiationFailed:     "ERROR_NEGOTIATION_FAILED",
	ErrorNullPointer:           "ERROR_NULL_POINTER",
}

// Error implements the error interface so ErrorCode composes with errors.Is/As.
func (e ErrorCode) Error() string {
	if n, ok := names[e]; ok {
		return n
	}
	return fmt.Sprintf("ERROR_CODE(%d)", int32(e))
}

// OK reports whether the code represents a non-failure outcome. EndOfStream
// is not a failure; every negative code is.
func (e ErrorCode) OK() bool {
	return e == Success || e == EndOfStream
}

// WrongState is the alias spec.md §4.3/§7 uses for "intent not permitted in
// current state". It is the same code as ErrorInvalidState; the alias exists
// because the plugin lifecycle and the filter/state-machine lifecycles both
// report it under that name.
const WrongState = ErrorInvalidState
