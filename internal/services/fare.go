package services

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"trip-fusion-service/internal/config"
	"trip-fusion-service/internal/domain"
)

// FareClassifier assigns a monetary fare to one completed itinerary based on
// the agencies and fare zones its legs touch. Rules are evaluated in strict
// order (first match wins): flat-fare agencies, special route fares, then
// zone combinations. Zones and rules are read-only, so the classifier is
// safe for concurrent use.
type FareClassifier struct {
	rules *config.FareRules
	zones map[string]domain.FareZone

	// canonical agency name -> flat fare
	flatFares map[string]float64
}

func NewFareClassifier(rules *config.FareRules, zones map[string]domain.FareZone) (*FareClassifier, error) {
	if rules == nil {
		return nil, errors.New("fare classifier: rules are nil")
	}

	flat := make(map[string]float64, len(rules.FlatFareAgencies))
	for _, a := range rules.FlatFareAgencies {
		flat[canonicalAgency(a.Agency)] = a.Fare
	}

	return &FareClassifier{
		rules:     rules,
		zones:     zones,
		flatFares: flat,
	}, nil
}

// canonicalAgency normalizes an agency display name for comparison. The
// upstream feed has shipped the same accented name under different byte
// sequences, so both sides of every comparison go through Unicode NFC.
func canonicalAgency(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ClassifyFare sets the itinerary's transit fare in place. Legs are never
// mutated. When no rule matches, the fare stays unset; an unpriced
// itinerary is a valid outcome, not an error.
func (c *FareClassifier) ClassifyFare(it *domain.Itinerary) {
	if fare, ok := c.flatAgencyFare(it); ok {
		it.TransitFare = &fare
		return
	}
	if fare, ok := c.specialRouteFare(it); ok {
		it.TransitFare = &fare
		return
	}
	if fare, ok := c.zoneFare(it); ok {
		it.TransitFare = &fare
	}
}

func (c *FareClassifier) flatAgencyFare(it *domain.Itinerary) (float64, bool) {
	for _, leg := range it.Legs {
		if leg.Agency == nil {
			continue
		}
		if fare, ok := c.flatFares[canonicalAgency(leg.Agency.Name)]; ok {
			return fare, true
		}
	}
	return 0, false
}

func (c *FareClassifier) specialRouteFare(it *domain.Itinerary) (float64, bool) {
	for _, rule := range c.rules.SpecialRouteFares {
		operator := canonicalAgency(rule.Operator)
		for _, leg := range it.Legs {
			if leg.Agency == nil || leg.Route == nil {
				continue
			}
			if canonicalAgency(leg.Agency.Name) != operator {
				continue
			}
			for _, headsign := range rule.Headsigns {
				if leg.Route.Headsign == headsign {
					return rule.Fare, true
				}
			}
		}
	}
	return 0, false
}

// zoneFare prices an itinerary by the set of zones its leg endpoints fall
// into. Exactly one zone means the base fare. Otherwise combinations are
// tried in declared order and the first one covering every touched zone
// wins, so narrower rules (including the two-zone-without-anchor exceptions
// that map back to the base fare) must be declared before the wider
// anchor-spanning tiers that subsume them. Touching the innermost and
// outermost zones therefore prices at the widest tier even when the legs
// never sample the zones in between.
func (c *FareClassifier) zoneFare(it *domain.Itinerary) (float64, bool) {
	touched := c.touchedZones(it)
	if len(touched) == 0 {
		return 0, false
	}
	if len(touched) == 1 {
		return c.rules.Zones.BaseFare, true
	}

	for _, combo := range c.rules.Zones.Combinations {
		if coversAll(combo.Zones, touched) {
			return combo.Fare, true
		}
	}

	return 0, false
}

// coversAll reports whether every touched zone appears in the combination.
func coversAll(zones []string, touched map[string]bool) bool {
	covered := make(map[string]bool, len(zones))
	for _, z := range zones {
		covered[z] = true
	}
	for name := range touched {
		if !covered[name] {
			return false
		}
	}
	return true
}

// touchedZones collects every zone containing a leg endpoint. A leg touches
// a zone when either its origin or its destination place lies inside it;
// zones are not required to be disjoint.
func (c *FareClassifier) touchedZones(it *domain.Itinerary) map[string]bool {
	touched := make(map[string]bool)
	for _, leg := range it.Legs {
		for name, zone := range c.zones {
			if touched[name] {
				continue
			}
			if zone.Contains(leg.From) || zone.Contains(leg.To) {
				touched[name] = true
			}
		}
	}
	return touched
}
