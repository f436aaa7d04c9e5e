package enums

import "fmt"

// CartLineErrorType enumerates hard validation failures on a cart line.
type CartLineErrorType string

const (
	CartLineErrorNotFoundOrInactive CartLineErrorType = "not_found_or_inactive"
	CartLineErrorOutOfStock         CartLineErrorType = "out_of_stock"
	CartLineErrorBelowMinOrderQty   CartLineErrorType = "below_min_order_qty"
)

var validCartLineErrorTypes = []CartLineErrorType{
	CartLineErrorNotFoundOrInactive,
	CartLineErrorOutOfStock,
	CartLineErrorBelowMinOrderQty,
}

// String implements fmt.Stringer.
func (c CartLineErrorType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartLineErrorType) IsValid() bool {
	for _, candidate := range validCartLineErrorTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartLineErrorType converts raw input into a CartLineErrorType.
func ParseCartLineErrorType(value string) (CartLineErrorType, error) {
	for _, candidate := range validCartLineErrorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart line error type %q", value)
}

// CartLineWarningType enumerates soft adjustments that keep the line valid.
type CartLineWarningType string

const (
	CartLineWarningClippedToStock  CartLineWarningType = "clipped_to_stock"
	CartLineWarningClippedToMaxQty CartLineWarningType = "clipped_to_max_qty"
)

var validCartLineWarningTypes = []CartLineWarningType{
	CartLineWarningClippedToStock,
	CartLineWarningClippedToMaxQty,
}

// String implements fmt.Stringer.
func (c CartLineWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CartLineWarningType) IsValid() bool {
	for _, candidate := range validCartLineWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartLineWarningType converts raw input into a CartLineWarningType.
func ParseCartLineWarningType(value string) (CartLineWarningType, error) {
	for _, candidate := range validCartLineWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart line warning type %q", value)
}
