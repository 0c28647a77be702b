package descriptor

import "github.com/wippyai/typedesc/errors"

// Sentinels for errors.Is. They match any phase.
var (
	ErrDynamicSize        = &errors.Error{Kind: errors.KindDynamicSize}
	ErrInvalidDescription = &errors.Error{Kind: errors.KindInvalidDescription}
	ErrNilDescriptor      = &errors.Error{Kind: errors.KindNilDescriptor}
	ErrTypeMismatch       = &errors.Error{Kind: errors.KindTypeMismatch}
)
