package domain

// Rule keys reported by the order validator.
const (
	KeyLinesNotEmpty     = "order.lines.notEmpty"
	KeyUnitPriceMin      = "line.unitPrice.min"
	KeyQuantityMin       = "line.quantity.min"
	KeyDateBeforeOrEqual = "order.date.beforeOrEqual"
)

// Violation is one failed constraint.
type Violation struct {
	Key     string
	Message string
}

// Violations is the set of constraints an order failed, in rule order.
type Violations []Violation

// Empty reports whether the order passed every rule.
func (v Violations) Empty() bool {
	return len(v) == 0
}

// Keys lists the rule keys.
func (v Violations) Keys() []string {
	keys := make([]string, 0, len(v))
	for _, violation := range v {
		keys = append(keys, violation.Key)
	}
	return keys
}

// Map indexes messages by rule key.
func (v Violations) Map() map[string]string {
	out := make(map[string]string, len(v))
	for _, violation := range v {
		out[violation.Key] = violation.Message
	}
	return out
}

// Has reports whether a violation with the given key is present.
func (v Violations) Has(key string) bool {
	for _, violation := range v {
		if violation.Key == key {
			return true
		}
	}
	return false
}
