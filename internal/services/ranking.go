package services

import (
	"sort"
	"strings"

	"bus_service/internal/models"
)

// Ranking criteria, matched case-insensitively.
const (
	CriteriaPrice = "price"
	CriteriaSpeed = "speed"
)

// RankingEngine filters and sorts route collections that were already read
// from the store. It never touches storage.
//
// In lenient mode unknown criteria keep the historical behaviour: Filter
// returns an empty collection and Sort returns its input untouched. Strict
// mode rejects them in both with InvalidCriteriaError.
type RankingEngine struct {
	strict bool
}

func NewRankingEngine(strictCriteria bool) *RankingEngine {
	return &RankingEngine{strict: strictCriteria}
}

// RankOptions mirrors the filter, sort and criteria query parameters.
type RankOptions struct {
	Filter   bool
	Sort     bool
	Criteria string
}

// Apply runs Filter when requested, otherwise Sort, otherwise returns routes.
func (e *RankingEngine) Apply(opts RankOptions, routes []models.Route) ([]models.Route, error) {
	switch {
	case opts.Filter:
		return e.Filter(opts.Criteria, routes)
	case opts.Sort:
		return e.Sort(opts.Criteria, routes)
	default:
		return routes, nil
	}
}

// Slice turns every (route, bus) pair into a route view holding only that bus.
// Routes without buses contribute nothing.
func (e *RankingEngine) Slice(routes []models.Route) []models.Route {
	views := []models.Route{}
	for _, route := range routes {
		for _, bus := range route.Buses {
			view := route.Clone()
			view.Buses = []models.Bus{bus}
			views = append(views, view)
		}
	}
	return views
}

// Filter keeps, for criteria price, the buses whose price equals the cheapest
// bus of the whole collection, and for speed the buses matching the fastest.
// Routes left without buses are dropped. Ties are all kept.
func (e *RankingEngine) Filter(criteria string, routes []models.Route) ([]models.Route, error) {
	var keep func(models.Bus, float64) bool
	var extremum func([]models.Route) (float64, bool)

	switch strings.ToLower(criteria) {
	case CriteriaPrice:
		extremum = minPrice
		keep = func(b models.Bus, lowest float64) bool { return b.KmPrice <= lowest }
	case CriteriaSpeed:
		extremum = maxSpeed
		keep = func(b models.Bus, highest float64) bool { return b.AverageSpeed >= highest }
	default:
		if e.strict {
			return nil, &InvalidCriteriaError{Criteria: criteria}
		}
		return []models.Route{}, nil
	}

	filtered := []models.Route{}
	limit, ok := extremum(routes)
	if !ok {
		return filtered, nil
	}

	for _, route := range routes {
		var buses []models.Bus
		for _, bus := range route.Buses {
			if keep(bus, limit) {
				buses = append(buses, bus)
			}
		}
		if len(buses) == 0 {
			continue
		}
		out := route.Clone()
		out.Buses = buses
		filtered = append(filtered, out)
	}
	return filtered, nil
}

// Sort slices routes into single-bus views and orders them by ascending price
// or descending speed. Views with equal keys keep their input order.
func (e *RankingEngine) Sort(criteria string, routes []models.Route) ([]models.Route, error) {
	var less func(a, b models.Bus) bool

	switch strings.ToLower(criteria) {
	case CriteriaPrice:
		less = func(a, b models.Bus) bool { return a.KmPrice < b.KmPrice }
	case CriteriaSpeed:
		less = func(a, b models.Bus) bool { return a.AverageSpeed > b.AverageSpeed }
	default:
		if e.strict {
			return nil, &InvalidCriteriaError{Criteria: criteria}
		}
		return routes, nil
	}

	views := e.Slice(routes)
	sort.SliceStable(views, func(i, j int) bool {
		return less(views[i].Buses[0], views[j].Buses[0])
	})
	return views, nil
}

func minPrice(routes []models.Route) (float64, bool) {
	var lowest float64
	found := false
	for _, route := range routes {
		for _, bus := range route.Buses {
			if !found || bus.KmPrice < lowest {
				lowest = bus.KmPrice
				found = true
			}
		}
	}
	return lowest, found
}

func maxSpeed(routes []models.Route) (float64, bool) {
	var highest float64
	found := false
	for _, route := range routes {
		for _, bus := range route.Buses {
			if !found || bus.AverageSpeed > highest {
				highest = bus.AverageSpeed
				found = true
			}
		}
	}
	return highest, found
}
