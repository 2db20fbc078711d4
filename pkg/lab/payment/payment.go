// Package payment is the reference solution for the strategy pattern task.
package payment

// Strategy turns a base amount into the amount actually charged.
type Strategy interface {
	ProcessPayment(amount float64) float64
}

// CreditCard adds a percentage processing fee.
type CreditCard struct {
	FeePercent float64
}

func (c CreditCard) ProcessPayment(amount float64) float64 {
	return amount + amount*c.FeePercent/100
}

// PayPal adds a percentage transaction fee.
type PayPal struct {
	FeePercent float64
}

func (p PayPal) ProcessPayment(amount float64) float64 {
	return amount + amount*p.FeePercent/100
}

// Crypto subtracts a percentage discount.
type Crypto struct {
	DiscountPercent float64
}

func (c Crypto) ProcessPayment(amount float64) float64 {
	return amount - amount*c.DiscountPercent/100
}

// Processor delegates checkout to a swappable strategy.
type Processor struct {
	strategy Strategy
}

func NewProcessor(s Strategy) *Processor { return &Processor{strategy: s} }

func (p *Processor) SetStrategy(s Strategy) { p.strategy = s }

func (p *Processor) Checkout(amount float64) float64 {
	return p.strategy.ProcessPayment(amount)
}
