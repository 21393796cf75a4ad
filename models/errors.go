package models

import "errors"

// Expected outcomes. These are normal traffic and are rendered to the user;
// anything else returned from the service layer is a store fault.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrNoEligibleRecipients   = errors.New("no eligible recipients")
	ErrSeasonNotActive        = errors.New("season is not active")
	ErrSeasonNotFound         = errors.New("season not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrQuestionInactive       = errors.New("question is inactive")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrEmptyQuestion          = errors.New("question text cannot be empty")
	ErrInvalidAmount          = errors.New("amount out of range")
	ErrSelfTransfer           = errors.New("cannot transfer to yourself")
	ErrEmptyReason            = errors.New("reason cannot be empty")
	ErrConcurrentModification = errors.New("concurrent modification, please retry")
	ErrNoSession              = errors.New("no session in progress")
	ErrUnexpectedStep         = errors.New("action not valid at this step")
)

// IsExpected reports whether err is one of the expected outcomes above
func IsExpected(err error) bool {
	for _, target := range []error{
		ErrUserNotFound,
		ErrInsufficientBalance,
		ErrNoEligibleRecipients,
		ErrSeasonNotActive,
		ErrSeasonNotFound,
		ErrTransactionNotFound,
		ErrQuestionInactive,
		ErrQuestionNotFound,
		ErrEmptyQuestion,
		ErrInvalidAmount,
		ErrSelfTransfer,
		ErrEmptyReason,
		ErrConcurrentModification,
		ErrNoSession,
		ErrUnexpectedStep,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
