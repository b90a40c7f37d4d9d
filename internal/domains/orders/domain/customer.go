package domain

// Customer is the slice of the customer service's record this context cares about.
type Customer struct {
	LastName string
	Email    string
}
