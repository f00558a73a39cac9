package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Marketplace workflow errors
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotParty          = errors.New("not a party to this contract")
	ErrNotOwner          = errors.New("not the owner of this resource")
)

func NewInvalidTransitionError(entity, from, to string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrInvalidTransition,
		Details:    fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
		Field:      "status",
	}
}

func NewNotPartyError(contractID string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrNotParty),
		Details:    fmt.Sprintf("contract %s", contractID),
	}
}

func NewNotOwnerError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrNotOwner),
		Details:    entity,
	}
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

func IsNotParty(err error) bool {
	return errors.Is(err, ErrNotParty)
}
