package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"bus_service/internal/services"
)

func init() {
	// report json field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	}
}

// bindingError converts a gin binding failure into a ValidationError.
func bindingError(err error) *services.ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]services.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, services.FieldError{Field: fe.Field(), Reason: reason(fe)})
		}
		return &services.ValidationError{Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &services.ValidationError{Fields: []services.FieldError{
			{Field: typeErr.Field, Reason: "must be a " + typeErr.Type.String()},
		}}
	}
	return &services.ValidationError{Fields: []services.FieldError{{Field: "body", Reason: err.Error()}}}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be null"
	case "gt":
		if fe.Param() == "0" {
			return "must be positive"
		}
		return "must be greater than " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// respondError maps registry failures onto HTTP responses. Unknown errors
// become 500 without leaking details.
func respondError(c *gin.Context, err error) {
	var (
		status int
		body   gin.H

		dupNumber   *services.DuplicateBusNumberError
		busMissing  *services.BusNotFoundError
		routeMiss   *services.RouteNotFoundError
		numberMiss  *services.BusNumberNotFoundError
		numbersMiss *services.BusNumbersNotExistError
		inUse       *services.BusInUseError
		dupInRoute  *services.DuplicateBusInRouteError
		criteria    *services.InvalidCriteriaError
		invalid     *services.ValidationError
	)

	switch {
	case errors.As(err, &dupNumber):
		status = http.StatusConflict
		body = gin.H{"error": "Bus with this number already exists", "bus_number": dupNumber.BusNumber}
	case errors.As(err, &busMissing):
		status = http.StatusNotFound
		body = gin.H{"error": "No bus with this id found", "missing_id": busMissing.BusID}
	case errors.As(err, &routeMiss):
		status = http.StatusNotFound
		body = gin.H{"error": "No route with this id found", "missing_id": routeMiss.RouteID}
	case errors.As(err, &numberMiss):
		status = http.StatusNotFound
		body = gin.H{"error": "No bus with this bus number found", "missing_number": numberMiss.BusNumber}
	case errors.As(err, &numbersMiss):
		status = http.StatusUnprocessableEntity
		body = gin.H{"error": "One or more buses with the given bus numbers do not exist", "missing_numbers": numbersMiss.MissingNumbers}
	case errors.As(err, &inUse):
		status = http.StatusConflict
		body = gin.H{"error": "The bus is still in use by one or more routes", "bus_using_routes": inUse.RouteIDs}
	case errors.As(err, &dupInRoute):
		status = http.StatusConflict
		body = gin.H{"error": "The specified route already contains the specified bus", "route_id": dupInRoute.RouteID, "bus_number": dupInRoute.BusNumber}
	case errors.As(err, &criteria):
		status = http.StatusBadRequest
		body = gin.H{"error": criteria.Error(), "criteria": criteria.Criteria}
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
		body = gin.H{"error": "Invalid request content", "fields": invalid.Fields}
	default:
		logrus.WithError(err).WithFields(requestFields(c)).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	logrus.WithFields(requestFields(c)).WithField("status", status).Warnf("request failed: %v", err)
	c.JSON(status, body)
}

func requestFields(c *gin.Context) logrus.Fields {
	return logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("request_id"),
	}
}
