package model

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

// IntParam reads an integer hyperparameter from a SetParams map. Whole floats
// are accepted because decoded JSON and YAML produce float64.
func IntParam(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v), nil
		}
	}
	return 0, errors.NewValidationError(key, "must be an integer", value)
}

// FloatParam reads a float hyperparameter from a SetParams map.
func FloatParam(key string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, errors.NewValidationError(key, "must be a number", value)
}

// StringParam reads a string hyperparameter from a SetParams map.
func StringParam(key string, value interface{}) (string, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return "", errors.NewValidationError(key, "must be a string", value)
}

// BoolParam reads a boolean hyperparameter from a SetParams map.
func BoolParam(key string, value interface{}) (bool, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return false, errors.NewValidationError(key, "must be a boolean", value)
}

// UnknownParam is the error SetParams returns for a key the model does not have.
func UnknownParam(model, key string) error {
	return errors.NewValidationError(key, fmt.Sprintf("unknown parameter for %s", model), key)
}
