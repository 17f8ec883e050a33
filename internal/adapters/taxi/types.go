package taxi

import (
	"fmt"
	"time"

	"trip-fusion-service/internal/domain"
)

// Asset-type identifiers understood by the taxi registry.
const (
	assetStandard    = "taxi-registry-standard"
	assetMinivan     = "taxi-registry-minivan"
	assetSpecialNeed = "taxi-registry-special-need"
)

type wireCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type wireStop struct {
	Coordinates wireCoordinates `json:"coordinates"`
}

type inquiryRequest struct {
	From          wireStop `json:"from"`
	To            wireStop `json:"to"`
	UseAssetTypes []string `json:"useAssetTypes"`
}

type wirePricePart struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currencyCode"`
}

type wirePricing struct {
	Estimated bool            `json:"estimated"`
	Parts     []wirePricePart `json:"parts"`
}

type wireAgency struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireBooking struct {
	Agency      wireAgency `json:"agency"`
	PhoneNumber *string    `json:"phoneNumber"`
	WebURL      *string    `json:"webUrl"`
}

type wireOption struct {
	DepartureTime       string      `json:"departureTime"`
	ArrivalTime         string      `json:"arrivalTime"`
	From                wireStop    `json:"from"`
	To                  wireStop    `json:"to"`
	EstimatedWaitTime   float64     `json:"estimatedWaitTime"`
	EstimatedTravelTime *float64    `json:"estimatedTravelTime"`
	Pricing             wirePricing `json:"pricing"`
	Booking             wireBooking `json:"booking"`
}

type inquiryResponse struct {
	ValidUntil string       `json:"validUntil"`
	Options    []wireOption `json:"options"`
}

func (o wireOption) toDomain() (domain.TaxiOption, error) {
	depart, err := time.Parse(time.RFC3339, o.DepartureTime)
	if err != nil {
		return domain.TaxiOption{}, fmt.Errorf("option departure time %q: %w", o.DepartureTime, err)
	}
	arrive, err := time.Parse(time.RFC3339, o.ArrivalTime)
	if err != nil {
		return domain.TaxiOption{}, fmt.Errorf("option arrival time %q: %w", o.ArrivalTime, err)
	}

	opt := domain.TaxiOption{
		DepartureTime:       depart.UnixMilli(),
		ArrivalTime:         arrive.UnixMilli(),
		From:                domain.Place{Lat: o.From.Coordinates.Lat, Lon: o.From.Coordinates.Lon},
		To:                  domain.Place{Lat: o.To.Coordinates.Lat, Lon: o.To.Coordinates.Lon},
		EstimatedWaitTime:   o.EstimatedWaitTime,
		EstimatedTravelTime: o.EstimatedTravelTime,
		Pricing: domain.Price{
			Estimated: o.Pricing.Estimated,
			Parts:     make([]domain.PricePart, 0, len(o.Pricing.Parts)),
		},
		Booking: domain.TaxiBooking{
			AgencyID:   o.Booking.Agency.ID,
			AgencyName: o.Booking.Agency.Name,
		},
	}

	for _, p := range o.Pricing.Parts {
		opt.Pricing.Parts = append(opt.Pricing.Parts, domain.PricePart{
			Amount:   p.Amount,
			Currency: p.Currency,
		})
	}
	if o.Booking.PhoneNumber != nil {
		opt.Booking.PhoneNumber = *o.Booking.PhoneNumber
	}
	if o.Booking.WebURL != nil {
		opt.Booking.WebURL = *o.Booking.WebURL
	}

	return opt, nil
}
