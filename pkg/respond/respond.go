// Package respond writes handler responses the same way everywhere:
// JSON bodies for data, plain text for errors and acknowledgements.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

// Text writes a plain acknowledgement message.
func Text(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// Error maps err to a status code. Internal errors are logged and hidden
// behind a generic message.
func Error(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logger.Sugar.Errorf("Internal error: %v", err)
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// Decode reads a JSON body into v and runs struct validation on it.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", apperr.ErrInvalid)
	}
	return Validate(v)
}

// Validate runs the validate tags on v and flattens the failures into one
// ErrInvalid message.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, strings.Join(msgs, ", "))
}

// Method reports false and writes 405 when r does not use method.
func Method(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
