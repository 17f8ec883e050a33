package domain

// One monetary component of a quoted price.
type PricePart struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Quoted price for a taxi trip. Estimated stays true only while every
// contributing quote was itself an estimate.
type Price struct {
	Estimated bool        `json:"estimated"`
	Parts     []PricePart `json:"parts"`
}

// Agency offering a quoted taxi trip, with booking contact details.
type TaxiBooking struct {
	AgencyID    string `json:"agencyId"`
	AgencyName  string `json:"agencyName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
}

// One ranked option returned by the taxi pricing service. Times are epoch
// milliseconds, wait/travel estimates are seconds.
type TaxiOption struct {
	DepartureTime int64 `json:"departureTime"`
	ArrivalTime   int64 `json:"arrivalTime"`

	From Place `json:"from"`
	To   Place `json:"to"`

	EstimatedWaitTime   float64  `json:"estimatedWaitTime"`
	EstimatedTravelTime *float64 `json:"estimatedTravelTime,omitempty"`

	Pricing Price       `json:"pricing"`
	Booking TaxiBooking `json:"booking"`
}

// ConcatTaxiOptions merges the pricing annotations of two adjacent fused
// segments. Wait and travel estimates add, destination and arrival take the
// later segment's values, price totals sum, and the result counts as
// estimated only if both inputs were. A single annotation passes through
// unchanged.
func ConcatTaxiOptions(a, b *TaxiOption) *TaxiOption {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	merged := *a
	merged.EstimatedWaitTime = a.EstimatedWaitTime + b.EstimatedWaitTime
	merged.EstimatedTravelTime = addOptional(a.EstimatedTravelTime, b.EstimatedTravelTime)
	merged.ArrivalTime = b.ArrivalTime
	merged.To = b.To

	merged.Pricing = Price{
		Estimated: a.Pricing.Estimated && b.Pricing.Estimated,
		Parts:     make([]PricePart, 0, 1),
	}
	if len(a.Pricing.Parts) > 0 {
		part := a.Pricing.Parts[0]
		if len(b.Pricing.Parts) > 0 {
			part.Amount += b.Pricing.Parts[0].Amount
		}
		merged.Pricing.Parts = append(merged.Pricing.Parts, part)
	} else if len(b.Pricing.Parts) > 0 {
		merged.Pricing.Parts = append(merged.Pricing.Parts, b.Pricing.Parts[0])
	}

	return &merged
}

func addOptional(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	sum := *a + *b
	return &sum
}
