package composer

import "fmt"

// StockPolicy decides which quantity a stock check compares against the snapshot
type StockPolicy int

const (
	// StockSnapshot checks each line on its own against the snapshot quantity.
	// Two lines of the same product may together exceed the available stock.
	StockSnapshot StockPolicy = iota
	// StockLedger checks the sum of every line of the same product.
	StockLedger
)

func (p StockPolicy) String() string {
	switch p {
	case StockSnapshot:
		return "snapshot"
	case StockLedger:
		return "ledger"
	default:
		return fmt.Sprintf("StockPolicy(%d)", int(p))
	}
}

// ParseStockPolicy maps a configuration value to a StockPolicy
func ParseStockPolicy(s string) (StockPolicy, error) {
	switch s {
	case "", "snapshot":
		return StockSnapshot, nil
	case "ledger":
		return StockLedger, nil
	default:
		return StockSnapshot, fmt.Errorf("unknown stock policy %q", s)
	}
}

// DiscountPolicy decides whether a line discount may exceed the line value
type DiscountPolicy int

const (
	// DiscountUnbounded accepts any non-negative discount; line totals may go negative.
	DiscountUnbounded DiscountPolicy = iota
	// DiscountCapped rejects a discount larger than unitPrice * quantity.
	DiscountCapped
)

func (p DiscountPolicy) String() string {
	switch p {
	case DiscountUnbounded:
		return "unbounded"
	case DiscountCapped:
		return "capped"
	default:
		return fmt.Sprintf("DiscountPolicy(%d)", int(p))
	}
}

// ParseDiscountPolicy maps a configuration value to a DiscountPolicy
func ParseDiscountPolicy(s string) (DiscountPolicy, error) {
	switch s {
	case "", "unbounded":
		return DiscountUnbounded, nil
	case "capped":
		return DiscountCapped, nil
	default:
		return DiscountUnbounded, fmt.Errorf("unknown discount policy %q", s)
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithStockPolicy sets how stock checks aggregate lines
func WithStockPolicy(p StockPolicy) Option {
	return func(e *Engine) {
		e.stockPolicy = p
	}
}

// WithDiscountPolicy sets whether line discounts are capped
func WithDiscountPolicy(p DiscountPolicy) Option {
	return func(e *Engine) {
		e.discountPolicy = p
	}
}
