package domain

// Complexity grades a lampshade design for pricing purposes.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityMedium      Complexity = "medium"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
)

// Valid reports whether the complexity is one of the four known tiers.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityVeryComplex:
		return true
	}
	return false
}

// PriceEstimate is a model-derived retail price in whole SEK with the
// model's rationale. Estimates are recomputed per request and never cached.
type PriceEstimate struct {
	Price      int        `json:"price"`
	Reasoning  string     `json:"reasoning"`
	Complexity Complexity `json:"complexity"`
}

// Price bounds outside of which a model-asserted price is treated as
// economically nonsensical and replaced by the fallback estimate.
const (
	MinSanePrice = 2000
	MaxSanePrice = 10000
)

// FallbackEstimate is the safe default used whenever price estimation
// degrades. Pricing must never block a customer from proceeding to order.
func FallbackEstimate() PriceEstimate {
	return PriceEstimate{
		Price:      3495,
		Reasoning:  "Standardpris för medium komplexitet",
		Complexity: ComplexityMedium,
	}
}
