// Package order holds the immutable order intent a call is placed for,
// the order status vocabulary, and the status sink contract.
package order

import "github.com/jinzhu/copier"

// Type is the fulfilment type of an order.
type Type string

const (
	TypePickup   Type = "pickup"
	TypeDelivery Type = "delivery"
)

// Context is the order intent supplied before dialing. It is read-only for
// the lifetime of the call; sessions work against snapshots.
type Context struct {
	Business            string
	Items               []string
	Type                Type
	DeliveryAddress     string
	PaymentMethod       string
	CustomerName        string
	SpecialInstructions string
}

// Snapshot returns a deep copy so a running session can never observe
// later mutation of the caller's slice.
func (c Context) Snapshot() Context {
	snapshot := Context{}
	_ = copier.CopyWithOption(&snapshot, &c, copier.Option{DeepCopy: true})
	return snapshot
}

// IsDelivery reports whether the order needs an address statement.
func (c Context) IsDelivery() bool { return c.Type == TypeDelivery }
