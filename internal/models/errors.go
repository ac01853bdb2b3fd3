package models

import "fmt"

// ErrorCode is the numeric identifier of a LotteryError. Codes start at 6000
// and follow declaration order, so they are stable across releases.
type ErrorCode int

const (
	CodeProgramPaused ErrorCode = iota + 6000
	CodeEmergencyStop
	CodeInvalidScheduledTime
	CodeInvalidLotteryStatus
	CodeNoParticipants
	CodeInsufficientJackpot
	CodeInvalidWinner
	CodeWinnerNotEligible
	CodeWinnerHasNoTickets
	CodeTooEarly
	CodeInvalidAmount
	CodeSignatureTooLong
	CodeJackpotTooLarge
	CodeInvalidTokenMint
	CodeInvalidTokenOwner
	CodeInsufficientTokenBalance
	CodeTooManyTickets
	CodeInvalidVRFSeed
	CodeInsufficientProgramBalance
	CodeInvalidConfig
	CodeInsufficientTreasuryBalance
	CodeUnauthorized
	CodeAccountNotFound
	CodeInvalidAccountData
	CodeArithmeticOverflow
	CodeInvalidInstructionData
	CodeNotRentExempt
	CodeInvalidProgramState
)

// ErrorCategory groups error codes by cause.
type ErrorCategory string

const (
	CategoryAdmission  ErrorCategory = "ADMISSION"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryLifecycle  ErrorCategory = "LIFECYCLE"
	CategoryAccounting ErrorCategory = "ACCOUNTING"
	CategoryIntegrity  ErrorCategory = "INTEGRITY"
)

// LotteryError is a ledger rule violation. The set of values is closed: every
// error the core reports is one of the package-level Err* variables, possibly
// wrapped with fmt.Errorf("%w").
type LotteryError struct {
	Code     ErrorCode     `json:"code"`
	Name     string        `json:"name"`
	Message  string        `json:"message"`
	Category ErrorCategory `json:"category"`
}

func (e *LotteryError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

func newError(code ErrorCode, name, message string, category ErrorCategory) *LotteryError {
	e := &LotteryError{Code: code, Name: name, Message: message, Category: category}
	errorsByCode[code] = e
	return e
}

var errorsByCode = make(map[ErrorCode]*LotteryError)

var (
	ErrProgramPaused               = newError(CodeProgramPaused, "ProgramPaused", "the program is currently paused", CategoryAdmission)
	ErrEmergencyStop               = newError(CodeEmergencyStop, "EmergencyStop", "emergency stop is active", CategoryAdmission)
	ErrInvalidScheduledTime        = newError(CodeInvalidScheduledTime, "InvalidScheduledTime", "invalid scheduled time", CategoryValidation)
	ErrInvalidLotteryStatus        = newError(CodeInvalidLotteryStatus, "InvalidLotteryStatus", "invalid lottery status", CategoryLifecycle)
	ErrNoParticipants              = newError(CodeNoParticipants, "NoParticipants", "no participants", CategoryLifecycle)
	ErrInsufficientJackpot         = newError(CodeInsufficientJackpot, "InsufficientJackpot", "insufficient jackpot", CategoryLifecycle)
	ErrInvalidWinner               = newError(CodeInvalidWinner, "InvalidWinner", "invalid winner", CategoryLifecycle)
	ErrWinnerNotEligible           = newError(CodeWinnerNotEligible, "WinnerNotEligible", "winner is not eligible", CategoryLifecycle)
	ErrWinnerHasNoTickets          = newError(CodeWinnerHasNoTickets, "WinnerHasNoTickets", "winner has no tickets", CategoryLifecycle)
	ErrTooEarly                    = newError(CodeTooEarly, "TooEarly", "too early to execute the lottery", CategoryLifecycle)
	ErrInvalidAmount               = newError(CodeInvalidAmount, "InvalidAmount", "invalid amount", CategoryValidation)
	ErrSignatureTooLong            = newError(CodeSignatureTooLong, "SignatureTooLong", "signature too long", CategoryValidation)
	ErrJackpotTooLarge             = newError(CodeJackpotTooLarge, "JackpotTooLarge", "jackpot amount too large", CategoryAccounting)
	ErrInvalidTokenMint            = newError(CodeInvalidTokenMint, "InvalidTokenMint", "invalid token mint", CategoryIntegrity)
	ErrInvalidTokenOwner           = newError(CodeInvalidTokenOwner, "InvalidTokenOwner", "invalid token owner", CategoryIntegrity)
	ErrInsufficientTokenBalance    = newError(CodeInsufficientTokenBalance, "InsufficientTokenBalance", "insufficient token balance", CategoryIntegrity)
	ErrTooManyTickets              = newError(CodeTooManyTickets, "TooManyTickets", "too many tickets for this wallet", CategoryAccounting)
	ErrInvalidVRFSeed              = newError(CodeInvalidVRFSeed, "InvalidVRFSeed", "invalid VRF seed", CategoryValidation)
	ErrInsufficientProgramBalance  = newError(CodeInsufficientProgramBalance, "InsufficientProgramBalance", "insufficient program balance", CategoryAccounting)
	ErrInvalidConfig               = newError(CodeInvalidConfig, "InvalidConfig", "invalid configuration parameter", CategoryValidation)
	ErrInsufficientTreasuryBalance = newError(CodeInsufficientTreasuryBalance, "InsufficientTreasuryBalance", "insufficient treasury balance", CategoryAccounting)
	ErrUnauthorized                = newError(CodeUnauthorized, "Unauthorized", "unauthorized access", CategoryAdmission)
	ErrAccountNotFound             = newError(CodeAccountNotFound, "AccountNotFound", "account not found", CategoryIntegrity)
	ErrInvalidAccountData          = newError(CodeInvalidAccountData, "InvalidAccountData", "invalid account data", CategoryValidation)
	ErrArithmeticOverflow          = newError(CodeArithmeticOverflow, "ArithmeticOverflow", "arithmetic overflow", CategoryAccounting)
	ErrInvalidInstructionData      = newError(CodeInvalidInstructionData, "InvalidInstructionData", "invalid instruction data", CategoryValidation)
	ErrNotRentExempt               = newError(CodeNotRentExempt, "NotRentExempt", "program account not rent exempt", CategoryIntegrity)
	ErrInvalidProgramState         = newError(CodeInvalidProgramState, "InvalidProgramState", "invalid program state", CategoryAdmission)
)

// ErrorByCode returns the error registered for code, or nil.
func ErrorByCode(code ErrorCode) *LotteryError {
	return errorsByCode[code]
}

// AllErrors lists every error in code order.
func AllErrors() []*LotteryError {
	out := make([]*LotteryError, 0, len(errorsByCode))
	for code := CodeProgramPaused; code <= CodeInvalidProgramState; code++ {
		out = append(out, errorsByCode[code])
	}
	return out
}
