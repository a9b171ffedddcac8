package cart

// Kind classifies a checkout failure.
type Kind int

const (
	// Unauthenticated: the session gate reported no signed-in user.
	Unauthenticated Kind = iota
	// EmptyCart: checkout was invoked on an empty ledger.
	EmptyCart
	// InvalidItemReference: a line's item id has no numeric backend form;
	// the whole checkout is aborted, nothing is submitted.
	InvalidItemReference
	// NoValidItems: every line was dropped before submission.
	NoValidItems
	// CheckoutFailed: the backend or transport rejected the order; the
	// ledger is left untouched.
	CheckoutFailed
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case EmptyCart:
		return "empty_cart"
	case InvalidItemReference:
		return "invalid_item_reference"
	case NoValidItems:
		return "no_valid_items"
	case CheckoutFailed:
		return "checkout_failed"
	}
	return "unknown"
}

// CheckoutError is delivered through the onError callback, never returned
// or panicked across the engine boundary.
type CheckoutError struct {
	Kind    Kind
	Message string
}

func (e CheckoutError) Error() string { return e.Message }
