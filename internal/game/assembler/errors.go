package assembler

import (
	"errors"
	"fmt"
)

var (
	// ErrPresetNotFound is the NotFound condition for a missing default preset.
	ErrPresetNotFound = errors.New("assembler: preset not found")
	// ErrCandidateNotFound is returned when a spawn point's chosen key has no item.
	ErrCandidateNotFound = errors.New("assembler: candidate item not found")
	// ErrNoCartridge is returned when no cartridge can be chosen for a caliber.
	ErrNoCartridge = errors.New("assembler: no cartridge for caliber")
)

// MissingPresetError reports a weapon that has no default preset and no mod
// slots to synthesise an assembly from. It is the only unrecoverable
// assembly failure; callers skip the affected item.
type MissingPresetError struct {
	Tpl string
}

func (e *MissingPresetError) Error() string {
	return fmt.Sprintf("assembler: weapon %q has no default preset and no slots to synthesise", e.Tpl)
}

// Unwrap lets errors.Is match ErrPresetNotFound.
func (e *MissingPresetError) Unwrap() error { return ErrPresetNotFound }
