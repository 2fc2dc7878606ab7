package services

import (
	"fmt"
	"strings"
)

// DuplicateBusNumberError means a create or update would give two buses the
// same bus number.
type DuplicateBusNumberError struct {
	BusNumber int
}

func (e *DuplicateBusNumberError) Error() string {
	return fmt.Sprintf("bus number %d is already in use by another bus", e.BusNumber)
}

// BusNotFoundError means no bus has the given id.
type BusNotFoundError struct {
	BusID uint
}

func (e *BusNotFoundError) Error() string {
	return fmt.Sprintf("bus with id %d not found", e.BusID)
}

// RouteNotFoundError means no route has the given id.
type RouteNotFoundError struct {
	RouteID uint
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("route with id %d not found", e.RouteID)
}

// BusNumberNotFoundError means no bus carries the given bus number.
type BusNumberNotFoundError struct {
	BusNumber int
}

func (e *BusNumberNotFoundError) Error() string {
	return fmt.Sprintf("no bus with bus number %d", e.BusNumber)
}

// BusNumbersNotExistError lists the requested bus numbers that could not be
// resolved while building a route.
type BusNumbersNotExistError struct {
	MissingNumbers []int
}

func (e *BusNumbersNotExistError) Error() string {
	return fmt.Sprintf("buses %v do not exist", e.MissingNumbers)
}

// BusInUseError means a bus cannot be deleted while routes reference it.
type BusInUseError struct {
	BusID    uint
	RouteIDs []uint
}

func (e *BusInUseError) Error() string {
	return fmt.Sprintf("bus %d is still in use by routes %v", e.BusID, e.RouteIDs)
}

// DuplicateBusInRouteError means the route already contains the bus.
type DuplicateBusInRouteError struct {
	RouteID   uint
	BusNumber int
}

func (e *DuplicateBusInRouteError) Error() string {
	return fmt.Sprintf("route %d already contains bus number %d", e.RouteID, e.BusNumber)
}

// InvalidCriteriaError is returned in strict ranking mode for criteria other
// than price and speed.
type InvalidCriteriaError struct {
	Criteria string
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("unknown criteria %q, expected %q or %q", e.Criteria, CriteriaPrice, CriteriaSpeed)
}

// FieldError describes one rejected field of a submitted bus or route.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError means a submitted value breaks a field constraint.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid input: " + strings.Join(parts, ", ")
}
