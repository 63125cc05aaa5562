package validation

import (
	"math"
	"unicode"

	"github.com/signalworks/flux-matrix/internal/errors"
)

const (
	// Size limits
	MaxAttributeNameSize = 256
	MaxSubjectSize       = 1024
	MaxPayloadSize       = 1 * 1024 * 1024 // 1 MB
	MaxAttributes        = 64
)

// Validator validates engine operations at the API boundary. The core
// itself never fails; nonsense is rejected here before it reaches it.
type Validator struct {
	positionSpace int
	maxPayload    int
}

// NewValidator creates a validator for the given position key space.
func NewValidator(positionSpace int) *Validator {
	return &Validator{
		positionSpace: positionSpace,
		maxPayload:    MaxPayloadSize,
	}
}

// ValidatePosition checks a position against the bounded key space.
func (v *Validator) ValidatePosition(position int) error {
	if position < 0 || position >= v.positionSpace {
		return errors.PositionOutOfRange(position, v.positionSpace)
	}
	return nil
}

// ValidateInsert validates an insert operation.
func (v *Validator) ValidateInsert(position int, subject string, payload []byte, attrs map[string]float64) error {
	if err := v.ValidatePosition(position); err != nil {
		return err
	}
	if len(subject) > MaxSubjectSize {
		return errors.InvalidArgument("subject too large", nil).
			WithDetail("size", len(subject)).
			WithDetail("max_size", MaxSubjectSize)
	}
	if len(payload) > v.maxPayload {
		return errors.InvalidArgument("payload too large", nil).
			WithDetail("size", len(payload)).
			WithDetail("max_size", v.maxPayload)
	}
	if len(attrs) > MaxAttributes {
		return errors.ResourceExhausted("attributes", len(attrs), MaxAttributes)
	}
	for name, value := range attrs {
		if err := v.ValidateAttributeName(name); err != nil {
			return err
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errors.InvalidAttribute(name, "value must be finite")
		}
	}
	return nil
}

// ValidateAttributeName checks attribute name shape and length.
func (v *Validator) ValidateAttributeName(name string) error {
	if name == "" {
		return errors.InvalidAttribute(name, "name is empty")
	}
	if len(name) > MaxAttributeNameSize {
		return errors.InvalidAttribute(name, "name too long")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.InvalidAttribute(name, "name contains control characters")
		}
	}
	return nil
}

// ValidateRange checks an attribute range query.
func (v *Validator) ValidateRange(name string, min, max float64) error {
	if err := v.ValidateAttributeName(name); err != nil {
		return err
	}
	if math.IsNaN(min) || math.IsNaN(max) {
		return errors.InvalidArgument("range bounds must not be NaN", nil)
	}
	if min > max {
		return errors.InvalidArgument("range min exceeds max", nil).
			WithDetail("min", min).
			WithDetail("max", max)
	}
	return nil
}

// ValidateEntropy checks a judgment signal.
func (v *Validator) ValidateEntropy(entropy float64) error {
	if math.IsNaN(entropy) || math.IsInf(entropy, 0) {
		return errors.InvalidEntropy(entropy, "must be finite")
	}
	return nil
}

// ValidateAnchor checks anchor registration parameters.
func (v *Validator) ValidateAnchor(position int, orbitalRadius, judgmentThreshold float64) error {
	if err := v.ValidatePosition(position); err != nil {
		return err
	}
	if math.IsNaN(orbitalRadius) || orbitalRadius < 0 {
		return errors.InvalidArgument("orbital_radius must be non-negative", nil).
			WithDetail("orbital_radius", orbitalRadius)
	}
	if math.IsNaN(judgmentThreshold) || math.IsInf(judgmentThreshold, 0) {
		return errors.InvalidArgument("judgment_threshold must be finite", nil).
			WithDetail("judgment_threshold", judgmentThreshold)
	}
	return nil
}
