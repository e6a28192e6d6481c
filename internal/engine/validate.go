package engine

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RealZimboGuy/catalogflow/pkg/catalogflow/domain"
)

const dateLayout = "2006-01-02"

// ValidateParameter checks value against the parameter type and the class
// constraint. A constraint that cannot be interpreted fails the value.
func ValidateParameter(param domain.Parameter, value string, c *domain.ParameterConstraint) bool {
	value = strings.TrimSpace(value)
	if c == nil {
		c = &domain.ParameterConstraint{}
	}

	var ok bool
	switch param.Type {
	case domain.ParameterNumber:
		ok = validateNumber(param, value, c)
	case domain.ParameterDate:
		ok = validateDate(param, value, c)
	case domain.ParameterBool:
		_, ok = parseBool(value)
	case domain.ParameterText:
		ok = validateText(param, value, c)
	default:
		slog.Warn("unknown parameter type", "parameter_id", param.ID, "type", param.Type)
		return false
	}
	if !ok {
		return false
	}
	return inAllowedSet(value, c.AllowedValues)
}

func validateNumber(param domain.Parameter, value string, c *domain.ParameterConstraint) bool {
	v, err := parseNumber(value)
	if err != nil {
		return false
	}
	if bound, set := constraintValue(c.MinVal); set {
		lo, err := parseNumber(bound)
		if err != nil {
			badConstraint(param, "min_val", bound)
			return false
		}
		if v < lo {
			return false
		}
	}
	if bound, set := constraintValue(c.MaxVal); set {
		hi, err := parseNumber(bound)
		if err != nil {
			badConstraint(param, "max_val", bound)
			return false
		}
		if v > hi {
			return false
		}
	}
	return true
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(s string) (float64, error) {
	if strings.ContainsAny(s, "xX") {
		return 0, fmt.Errorf("not a decimal number: %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func validateDate(param domain.Parameter, value string, c *domain.ParameterConstraint) bool {
	v, err := parseDate(value)
	if err != nil {
		return false
	}
	if bound, set := constraintValue(c.MinVal); set {
		lo, err := parseDate(bound)
		if err != nil {
			badConstraint(param, "min_val", bound)
			return false
		}
		if v.Before(lo) {
			return false
		}
	}
	if bound, set := constraintValue(c.MaxVal); set {
		hi, err := parseDate(bound)
		if err != nil {
			badConstraint(param, "max_val", bound)
			return false
		}
		if v.After(hi) {
			return false
		}
	}
	return true
}

func validateText(param domain.Parameter, value string, c *domain.ParameterConstraint) bool {
	length := utf8.RuneCountInString(value)
	if bound, set := constraintValue(c.MinVal); set {
		lo, err := strconv.Atoi(bound)
		if err != nil {
			badConstraint(param, "min_val", bound)
			return false
		}
		if length < lo {
			return false
		}
	}
	if bound, set := constraintValue(c.MaxVal); set {
		hi, err := strconv.Atoi(bound)
		if err != nil {
			badConstraint(param, "max_val", bound)
			return false
		}
		if length > hi {
			return false
		}
	}
	if pattern, set := constraintValue(c.Pattern); set {
		re, err := regexp.Compile(pattern)
		if err != nil {
			badConstraint(param, "pattern", pattern)
			return false
		}
		if !re.MatchString(value) {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

func inAllowedSet(value string, allowed sql.NullString) bool {
	set, ok := constraintValue(allowed)
	if !ok {
		return true
	}
	for _, candidate := range strings.Split(set, "|") {
		if strings.TrimSpace(candidate) == value {
			return true
		}
	}
	return false
}

func constraintValue(v sql.NullString) (string, bool) {
	if !v.Valid {
		return "", false
	}
	s := strings.TrimSpace(v.String)
	return s, s != ""
}

func badConstraint(param domain.Parameter, field, value string) {
	slog.Warn("unparsable parameter constraint",
		"parameter_id", param.ID, "field", field, "value", value)
}
