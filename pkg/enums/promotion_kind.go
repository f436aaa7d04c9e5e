package enums

import "fmt"

// PromotionKind is the discount mechanics of a promotion. Evaluation switches
// exhaustively over this type; adding a kind means touching every switch.
type PromotionKind string

const (
	PromotionKindPercentage PromotionKind = "percentage"
	PromotionKindFixed      PromotionKind = "fixed"
	PromotionKindBuyXGetY   PromotionKind = "buy_x_get_y"
	PromotionKindBundle     PromotionKind = "bundle"
)

var validPromotionKinds = []PromotionKind{
	PromotionKindPercentage,
	PromotionKindFixed,
	PromotionKindBuyXGetY,
	PromotionKindBundle,
}

// String implements fmt.Stringer.
func (p PromotionKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionKind.
func (p PromotionKind) IsValid() bool {
	for _, candidate := range validPromotionKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionKind converts raw input into a PromotionKind.
func ParsePromotionKind(value string) (PromotionKind, error) {
	for _, candidate := range validPromotionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion kind %q", value)
}
