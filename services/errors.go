package services

import (
	"errors"
	"fmt"
	"time"
)

// Expected business outcomes. Handlers map these to 4xx responses and show
// the message to the user; they never indicate a bug.
var (
	ErrAlreadyCheckedIn      = errors.New("already checked in today")
	ErrInsufficientInventory = errors.New("not enough item in inventory")
	ErrInsufficientFunds     = errors.New("not enough coins")
	ErrPetNotFound           = errors.New("pet not found")
	ErrUnknownSpecies        = errors.New("unknown species")
	ErrUnknownItem           = errors.New("unknown shop item")
)

// CooldownError tells the caller how long to wait before playing again.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("play on cooldown, retry in %s", e.RetryAfter.Round(time.Second))
}
