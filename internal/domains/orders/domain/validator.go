package domain

import "time"

// rule is an independent predicate with the violation it reports.
type rule struct {
	key     string
	message string
	holds   func(order Order, today time.Time) bool
}

// orderRules is evaluated in full for every order; later rules never depend on earlier ones.
var orderRules = []rule{
	{
		key:     KeyLinesNotEmpty,
		message: "At least one order line is required.",
		holds: func(order Order, _ time.Time) bool {
			return len(order.Lines) > 0
		},
	},
	{
		key:     KeyUnitPriceMin,
		message: "The unit price must be at least 0.",
		holds: func(order Order, _ time.Time) bool {
			for _, line := range order.Lines {
				if line.UnitPrice.IsNegative() {
					return false
				}
			}
			return true
		},
	},
	{
		key:     KeyQuantityMin,
		message: "The minimum quantity is 1.",
		holds: func(order Order, _ time.Time) bool {
			for _, line := range order.Lines {
				if line.Quantity < 1 {
					return false
				}
			}
			return true
		},
	},
	{
		key:     KeyDateBeforeOrEqual,
		message: "The date must be today or in the past.",
		holds: func(order Order, today time.Time) bool {
			return !DateOf(order.Date).After(today)
		},
	},
}

// Validator checks an order against the fixed order rules.
type Validator struct {
	now func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator builds a validator that uses the wall clock unless overridden.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate returns every violated rule. An empty result means the order is valid.
func (v *Validator) Validate(order Order) Violations {
	now := time.Now
	if v != nil && v.now != nil {
		now = v.now
	}
	today := DateOf(now())

	var violations Violations
	for _, r := range orderRules {
		if !r.holds(order, today) {
			violations = append(violations, Violation{Key: r.key, Message: r.message})
		}
	}
	return violations
}
