package automation

import "errors"

var (
	// ErrOrderNotFound means the order was deleted out-of-band before a
	// scheduled callback fired. The transition is abandoned, never retried.
	ErrOrderNotFound = errors.New("order not found")

	// ErrPartnerNotFound means the referenced delivery partner no longer exists.
	ErrPartnerNotFound = errors.New("delivery partner not found")

	// ErrNoPartnerAvailable means zero eligible partners exist at assignment
	// time. The order is left unassigned; manual assignment may still succeed.
	ErrNoPartnerAvailable = errors.New("no delivery partner available")
)
