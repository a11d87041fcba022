package tx

import "fmt"

// Result is an instruction result code.
//
// Codes are grouped by category the way ledger engines usually do it:
// zero is success, positive codes are failures detected while executing
// against state, negative codes mean the instruction was rejected before
// execution. In every non-success case zero effects are committed.
type Result int

const (
	// ResOK means the instruction applied and all effects committed.
	ResOK Result = 0

	// Execution failures (100-199). The instruction was well formed but
	// could not be applied against current state.
	ResInsufficientFunds   Result = 101 // asset or claim balance too low
	ResOverflow            Result = 102 // arithmetic exceeds the representable range
	ResUnauthorized        Result = 103 // signer is not the principal the entry point requires
	ResPolicyViolation     Result = 104 // destination asset not whitelisted
	ResCollaboratorFailure Result = 105 // external exchange failed, including slippage shortfall
	ResNoEntry             Result = 106 // required ledger entry does not exist
	ResEntryExists         Result = 107 // entry already exists (duplicate initialize)
	ResInternal            Result = 108 // invariant violation inside the engine

	// Rejections (-299..-200). The instruction never reached state.
	ResInvalidArgument Result = -201 // zero amounts, oversized payloads, missing fields
	ResAddressMismatch Result = -202 // supplied account disagrees with derivation
)

var resultNames = map[Result]string{
	ResOK:                  "OK",
	ResInsufficientFunds:   "InsufficientFunds",
	ResOverflow:            "Overflow",
	ResUnauthorized:        "UnauthorizedAccess",
	ResPolicyViolation:     "PolicyViolation",
	ResCollaboratorFailure: "CollaboratorFailure",
	ResNoEntry:             "NoEntry",
	ResEntryExists:         "EntryExists",
	ResInternal:            "Internal",
	ResInvalidArgument:     "InvalidArgument",
	ResAddressMismatch:     "AddressMismatch",
}

// String returns the canonical name of the result code.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Success reports whether the instruction committed.
func (r Result) Success() bool {
	return r == ResOK
}

// Rejected reports whether the instruction was refused before touching state.
func (r Result) Rejected() bool {
	return r < 0
}

// Retryable reports whether a client may reasonably resubmit the same
// instruction. Authorization and policy failures are final; collaborator
// failures may be transient.
func (r Result) Retryable() bool {
	switch r {
	case ResCollaboratorFailure, ResInternal:
		return true
	default:
		return false
	}
}
