package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"netseg/internal/domain"
)

var (
	ipRangePattern   = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}/\d{1,2}$`)
	ipAddrPattern    = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	hostLabelPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// ValidationError reports the fields of a request that failed validation,
// keyed by their JSON name
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidationError reports whether err carries field errors
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FormValidator checks request structs against their validate tags
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator creates a validator with the form rules registered
func NewFormValidator() *FormValidator {
	v := &FormValidator{validate: validator.New()}

	// Report fields by their JSON names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.register("iprange", matches(ipRangePattern))
	v.register("ipaddr", matches(ipAddrPattern))
	v.register("hostlabel", matches(hostLabelPattern))
	v.register("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.register("nodetype", func(fl validator.FieldLevel) bool {
		return domain.NodeType(fl.Field().String()).Valid()
	})
	v.register("department", func(fl validator.FieldLevel) bool {
		return domain.Department(fl.Field().String()).Valid()
	})

	return v
}

func (v *FormValidator) register(tag string, fn validator.Func) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// matches accepts an empty value; forms that need one add required
func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || re.MatchString(v)
	}
}

// Validate checks s and returns a *ValidationError listing every failing field
func (v *FormValidator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		field := e.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		out.Fields[field] = fieldMessage(field, e.Tag(), e.Param())
	}
	return out
}

// requiredMessages are the inline messages shown for empty form fields
var requiredMessages = map[string]string{
	"hostname":    "Hostname is required",
	"department":  "Department selection is required",
	"ip_address":  "IP address is required",
	"namespace":   "Network namespace is required",
	"name":        "Name is required",
	"vlan_id":     "VLAN ID is required",
	"subnet":      "IP range is required",
	"gateway":     "Gateway is required",
	"source":      "Source host is required",
	"destination": "Destination host is required",
}

func fieldMessage(field, tag, param string) string {
	base := field
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}

	switch tag {
	case "required", "notblank":
		if msg, ok := requiredMessages[base]; ok {
			return msg
		}
		return "This field is required"
	case "iprange":
		return "Invalid IP range format (e.g., 192.168.1.0/24)"
	case "ipaddr":
		if base == "gateway" || base == "gateway_ip" {
			return "Invalid gateway IP format"
		}
		return "Please enter a valid IP address"
	case "hostlabel":
		return "Hostname can only contain letters, numbers, and hyphens"
	case "nodetype":
		return "Unknown node type"
	case "department":
		return "Unknown department"
	case "nefield":
		return "Source and destination must be different"
	case "min":
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		return fmt.Sprintf("Must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("Failed %s validation", tag)
	}
}
