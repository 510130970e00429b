package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrPolicyViolation = errors.New("policy violation")
	ErrValidation      = errors.New("validation failed")
)

// Error is a rejected operation with a stable code and a message fit for end users.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(code, message string) error {
	return &Error{Kind: ErrNotFound, Code: code, Message: message}
}

func forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Code: "not_participant", Message: message}
}

func policy(code, message string) error {
	return &Error{Kind: ErrPolicyViolation, Code: code, Message: message}
}

func invalid(code, message string) error {
	return &Error{Kind: ErrValidation, Code: code, Message: message}
}

var (
	errConversationNotFound = notFound("conversation_not_found", "Conversation not found")
	errProductNotFound      = notFound("product_not_found", "Product not found")
	errUserNotFound         = notFound("user_not_found", "User not found")
	errNotParticipant       = forbidden("You are not a participant in this conversation")

	errSelfPurchase         = policy("self_purchase", "You cannot initiate a conversation for your own product")
	errProductUnavailable   = policy("product_unavailable", "Product is no longer available for purchase")
	errAlreadyApproved      = policy("already_approved", "You have already approved this transaction")
	errAlreadyCompleted     = policy("already_completed", "Transaction has already been completed")
	errApproveCancelled     = policy("conversation_cancelled", "Cannot approve a cancelled transaction")
	errCancelCompleted      = policy("already_completed", "Cannot cancel a completed transaction")
	errAlreadyCancelled     = policy("already_cancelled", "Conversation is already cancelled")
	errSendCancelled        = policy("conversation_cancelled", "Cannot send messages to a cancelled conversation")
	errConcurrentUpdate     = policy("concurrent_update", "The conversation was changed by another request, please retry")
	errEmptyMessage         = invalid("empty_message", "Message content cannot be empty")
	errMessageTooLong       = invalid("message_too_long", fmt.Sprintf("Message content is too long (maximum %d characters)", MaxMessageLength))
	errEmptySearchTerm      = invalid("empty_search_term", "Search term cannot be empty")
	errUnknownMessageType   = invalid("unknown_message_type", "Message type must be TEXT or SYSTEM_MESSAGE")
)

// notFoundAs maps gorm.ErrRecordNotFound to target and wraps anything else.
func notFoundAs(err, target error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return fmt.Errorf("service: %s: %w", op, err)
}
