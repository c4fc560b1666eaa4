package pricing

import "errors"

// Input validation errors. These reject a quote request before any model
// math runs; callers surface them as 4xx responses.
var (
	// ErrInvalidQuantity indicates a missing or non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidDimensions indicates missing or non-positive width/height.
	ErrInvalidDimensions = errors.New("width and height must be positive")

	// ErrUnknownMaterial indicates the requested material key is absent from
	// the preset configuration.
	ErrUnknownMaterial = errors.New("unknown material")

	// ErrUnknownPrintMode indicates the requested print mode is absent from
	// the preset configuration.
	ErrUnknownPrintMode = errors.New("unknown print mode")

	// ErrUnknownSize indicates the requested size label is absent from the
	// preset configuration.
	ErrUnknownSize = errors.New("unknown size")

	// ErrUnknownCutType indicates an unrecognized cut type.
	ErrUnknownCutType = errors.New("unknown cut type")
)

var (
	// ErrNoActivePreset indicates the product has no active pricing preset.
	ErrNoActivePreset = errors.New("product has no active pricing preset")

	// ErrInvalidConfig indicates a stored configuration that does not match
	// the shape required by its declared model.
	ErrInvalidConfig = errors.New("invalid pricing configuration")

	// ErrUnpriceable indicates a full model run produced a non-positive
	// total. It is never coerced to a zero price; checkout blocks the order.
	ErrUnpriceable = errors.New("unable to price item")
)
