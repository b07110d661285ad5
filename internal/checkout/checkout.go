// Package checkout turns the cart plus shipping form into an order. The
// form is validated field by field; errors come back keyed by field so the
// UI can surface them inline.
package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Vietnamese mobile numbers: leading 0, carrier prefix 3/5/7/8/9, then
// eight digits.
var (
	phonePattern = regexp.MustCompile(`^(0[35789])[0-9]{8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	minNameLen    = 2
	minAddressLen = 5
)

type Form struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	CityCode      int    `json:"city_code"`
	District      string `json:"district"`
	DistrictCode  int    `json:"district_code"`
	Ward          string `json:"ward"`
	WardCode      int    `json:"ward_code"`
	Note          string `json:"note,omitempty"`
	PaymentMethod string `json:"payment_method"`
}

// Validate returns a field-keyed error map; an empty map means the form is
// submittable.
func (f Form) Validate() map[string]string {
	errs := map[string]string{}

	name := strings.TrimSpace(f.FullName)
	switch {
	case name == "":
		errs["full_name"] = "full name is required"
	case len([]rune(name)) < minNameLen:
		errs["full_name"] = fmt.Sprintf("full name must be at least %d characters", minNameLen)
	}

	phone := strings.TrimSpace(f.Phone)
	switch {
	case phone == "":
		errs["phone"] = "phone is required"
	case !phonePattern.MatchString(phone):
		errs["phone"] = "phone is not a valid mobile number"
	}

	if email := strings.TrimSpace(f.Email); email != "" && !emailPattern.MatchString(email) {
		errs["email"] = "email is not valid"
	}

	if f.CityCode <= 0 || strings.TrimSpace(f.City) == "" {
		errs["city"] = "province is required"
	}
	if f.DistrictCode <= 0 || strings.TrimSpace(f.District) == "" {
		errs["district"] = "district is required"
	}
	if f.WardCode <= 0 || strings.TrimSpace(f.Ward) == "" {
		errs["ward"] = "ward is required"
	}

	addr := strings.TrimSpace(f.Address)
	switch {
	case addr == "":
		errs["address"] = "street address is required"
	case len([]rune(addr)) < minAddressLen:
		errs["address"] = "street address is too short"
	}

	switch f.PaymentMethod {
	case "cod", "banking":
	default:
		errs["payment_method"] = "payment method must be cod or banking"
	}

	return errs
}

// ComposedAddress joins the address components most-specific-first.
func (f Form) ComposedAddress() string {
	parts := []string{
		strings.TrimSpace(f.Address),
		strings.TrimSpace(f.Ward),
		strings.TrimSpace(f.District),
		strings.TrimSpace(f.City),
	}
	return strings.Join(parts, ", ")
}

// ErrEmptyCart blocks checkout before any order is created.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError carries the field-keyed messages from Form.Validate.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout form (%d fields)", len(e.Fields))
}
