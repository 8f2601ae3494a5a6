package engine

import (
	"errors"
	"fmt"
)

// Structural rejections are raised at creation time. Ownership, illegal-move and protocol
// errors are expected client conditions and are reported to callers as a plain rejection.
// ErrRegistryDesync is a defect: the registry and an owner view disagree.
var (
	ErrUnknownVariant     = errors.New("unknown variant")
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrOwnershipViolation = errors.New("ownership violation")
	ErrIllegalMove        = errors.New("illegal move")
	ErrProtocolViolation  = errors.New("protocol violation")
	ErrGameFinished       = errors.New("game finished")
	ErrRegistryDesync     = errors.New("registry desync")
)

// Illegalf wraps ErrIllegalMove with detail.
func Illegalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIllegalMove, fmt.Sprintf(format, args...))
}

// Protocolf wraps ErrProtocolViolation with detail.
func Protocolf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrProtocolViolation, fmt.Sprintf(format, args...))
}

// IsRejection reports whether err is an ordinary turn rejection rather than a defect.
func IsRejection(err error) bool {
	return errors.Is(err, ErrIllegalMove) ||
		errors.Is(err, ErrProtocolViolation) ||
		errors.Is(err, ErrOwnershipViolation) ||
		errors.Is(err, ErrGameFinished)
}
