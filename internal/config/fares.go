package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// A transit agency whose presence on any leg prices the whole itinerary at
// a flat amount, regardless of zones touched.
type FlatFareAgency struct {
	Agency string  `yaml:"agency" validate:"required"`
	Fare   float64 `yaml:"fare" validate:"gt=0"`
}

// A flat fare for specific routes of one operator, matched by headsign so
// both directions of a line can be listed.
type SpecialRouteFare struct {
	Operator  string   `yaml:"operator" validate:"required"`
	Headsigns []string `yaml:"headsigns" validate:"required,min=1"`
	Fare      float64  `yaml:"fare" validate:"gt=0"`
}

// A fare for a combination of touched zones. Combinations are evaluated in
// declared order; a rule fires when it covers every touched zone. Narrow
// rules (the two-zone exceptions) must therefore be declared before the
// wider anchor-spanning tiers that subsume them.
type ZoneCombination struct {
	Zones []string `yaml:"zones" validate:"required,min=2"`
	Fare  float64  `yaml:"fare" validate:"gt=0"`
}

type ZoneFares struct {
	Anchor       string            `yaml:"anchor" validate:"required"`
	BaseFare     float64           `yaml:"base_fare" validate:"gt=0"`
	Combinations []ZoneCombination `yaml:"combinations" validate:"dive"`
}

// Driving cost model by vehicle type, applied to CAR itineraries: a per-km
// running cost plus fixed annual ownership costs amortized over the
// caller's annual mileage.
type DrivingCosts struct {
	PerKm       map[string]float64 `yaml:"per_km"`
	FixedAnnual map[string]float64 `yaml:"fixed_annual"`
}

// The complete fare rule table. One canonical table is loaded at startup
// and shared read-only.
type FareRules struct {
	Currency          string             `yaml:"currency" validate:"required,len=3"`
	FlatFareAgencies  []FlatFareAgency   `yaml:"flat_fare_agencies" validate:"dive"`
	SpecialRouteFares []SpecialRouteFare `yaml:"special_route_fares" validate:"dive"`
	Zones             ZoneFares          `yaml:"zones" validate:"required"`
	DrivingCosts      DrivingCosts       `yaml:"driving_costs"`
}

// LoadFareRules reads and validates the fare rule table from a YAML file.
func LoadFareRules(path string) (*FareRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fare rules: %w", err)
	}

	var rules FareRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("load fare rules: parse %q: %w", path, err)
	}

	v := validator.New()
	if err := v.Struct(rules); err != nil {
		return nil, fmt.Errorf("load fare rules: validate %q: %w", path, err)
	}

	for i, combo := range rules.Zones.Combinations {
		for _, z := range combo.Zones {
			if len(z) == 0 {
				return nil, fmt.Errorf("load fare rules: combination %d has an empty zone name", i)
			}
		}
	}

	return &rules, nil
}
