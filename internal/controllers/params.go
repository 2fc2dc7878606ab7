package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bus_service/internal/services"
)

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, &services.ValidationError{Fields: []services.FieldError{
			{Field: name, Reason: "must be a positive integer"},
		}}
	}
	return uint(v), nil
}

// busNumberParam parses a bus number path parameter.
func busNumberParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, &services.ValidationError{Fields: []services.FieldError{
			{Field: name, Reason: "must be a positive integer"},
		}}
	}
	return v, nil
}
