package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")

	ErrUnknownRole   = errors.New("unknown role")
	ErrUnknownAction = errors.New("action is not available for role")

	ErrInventoryUnavailable = errors.New("inventory is unavailable")
	ErrItemNotFound         = errors.New("item is not on the menu")
	ErrInsufficientStock    = errors.New("insufficient stock")
)
