package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"clementus360/coaching-portal/apperr"
	"clementus360/coaching-portal/config"
	"clementus360/coaching-portal/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "field '%s' is required",
	"email":    "field '%s' must be a valid email address",
	"url":      "field '%s' must be a valid URL",
	"min":      "field '%s' must be at least %s",
	"gte":      "field '%s' must be greater than or equal to %s",
	"lte":      "field '%s' must be less than or equal to %s",
	"oneof":    "field '%s' must be one of [%s]",
	"uuid":     "field '%s' must be a UUID",
}

// validateStruct runs the struct's validate tags and folds failures into one
// ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.SplitN(e.Namespace(), ".", 2)
		name := field[len(field)-1]
		tmpl, ok := validationMessages[e.Tag()]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("field '%s' is invalid: %s", name, e.Tag()))
			continue
		}
		if strings.Count(tmpl, "%s") == 2 {
			msgs = append(msgs, fmt.Sprintf(tmpl, name, e.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf(tmpl, name))
		}
	}
	return apperr.Validation(strings.Join(msgs, "; "))
}

// decodeJSON decodes a request body, rejecting unknown fields, and validates
// the result.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("Invalid JSON body: " + err.Error())
	}
	return validateStruct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, status int) {
	resp := types.ErrorResponse{
		Success:      false,
		ErrorMessage: message,
	}
	writeJSON(w, status, resp)
}

// fail logs err and writes it with the status its kind maps to.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	entry := config.Logger.WithField("path", r.URL.Path)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed:", err)
	} else {
		entry.Warn("Request rejected:", err)
	}
	writeError(w, apperr.Message(err), status)
}

// pathID reads a UUID path parameter.
func pathID(r *http.Request, name, what string) (string, error) {
	id := r.PathValue(name)
	if id == "" {
		return "", apperr.Validation("Missing " + what + " ID")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("Invalid " + what + " ID")
	}
	return id, nil
}
