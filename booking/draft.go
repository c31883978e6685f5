package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimeSlots are the service windows offered on the schedule step.
var TimeSlots = []string{
	"8:00 AM - 10:00 AM",
	"10:00 AM - 12:00 PM",
	"12:00 PM - 2:00 PM",
	"2:00 PM - 4:00 PM",
	"4:00 PM - 6:00 PM",
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Draft is the transient wizard state for one booking attempt. It is never
// persisted as-is; only its payment-confirmed projection becomes a booking
// row. NumDogs stays a string because it arrives from a form field and
// pricing parses it best-effort.
type Draft struct {
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Address             string    `json:"address"`
	City                string    `json:"city"`
	State               string    `json:"state"`
	ZipCode             string    `json:"zip_code"`
	ServiceDate         string    `json:"service_date"` // YYYY-MM-DD
	ServiceTime         string    `json:"service_time"`
	SpecialInstructions string    `json:"special_instructions"`
	NumDogs             string    `json:"num_dogs"`
	Frequency           Frequency `json:"frequency"`
}

// Identity is the read-only snapshot of the authenticated customer, injected
// into the wizard so the core stays testable without a session provider.
type Identity struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	CustomerID      string `json:"customer_id,omitempty"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

// NewDraft builds the initial draft, pre-filled from the identity snapshot
// and the plan/dogs defaults carried on the booking URL. City, state and zip
// default to the service area.
func NewDraft(id Identity, planParam, dogsParam string) Draft {
	d := Draft{
		City:      "Pahoa",
		State:     "HI",
		ZipCode:   "96778",
		NumDogs:   dogsParam,
		Frequency: ParseFrequency(planParam),
	}
	if d.NumDogs == "" {
		d.NumDogs = "1"
	}
	if id.IsAuthenticated {
		first, last, _ := strings.Cut(id.Name, " ")
		d.FirstName = first
		d.LastName = last
		d.Email = id.Email
		d.Phone = id.Phone
		if id.Address != "" {
			d.Address = id.Address
		}
	}
	return d
}

// ValidateCustomerInfo gates the 1→2 transition. Returns a field→message
// map; empty means the step may advance.
func (d Draft) ValidateCustomerInfo() map[string]string {
	errs := map[string]string{}
	requireField(errs, "first_name", d.FirstName, "First name is required")
	requireField(errs, "last_name", d.LastName, "Last name is required")
	requireField(errs, "phone", d.Phone, "Phone number is required")
	requireField(errs, "address", d.Address, "Street address is required")
	requireField(errs, "city", d.City, "City is required")
	requireField(errs, "state", d.State, "State is required")
	requireField(errs, "zip_code", d.ZipCode, "ZIP code is required")

	if strings.TrimSpace(d.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(strings.TrimSpace(d.Email)) {
		errs["email"] = "Enter a valid email address"
	}
	return errs
}

// ValidateSchedule gates the 2→3 transition: a service date today or later
// and one of the offered time slots.
func (d Draft) ValidateSchedule(now time.Time) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(d.ServiceDate) == "" {
		errs["service_date"] = "Service date is required"
	} else if date, err := time.Parse("2006-01-02", d.ServiceDate); err != nil {
		errs["service_date"] = "Enter a valid date (YYYY-MM-DD)"
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if date.Before(today) {
			errs["service_date"] = "Service date must be today or later"
		}
	}

	if strings.TrimSpace(d.ServiceTime) == "" {
		errs["service_time"] = "Select a time slot"
	} else if !validTimeSlot(d.ServiceTime) {
		errs["service_time"] = "Select one of the offered time slots"
	}
	return errs
}

// Validate runs every step gate at once. Checkout initiation re-checks the
// whole draft before money is involved.
func (d Draft) Validate(now time.Time) map[string]string {
	errs := d.ValidateCustomerInfo()
	for k, v := range d.ValidateSchedule(now) {
		errs[k] = v
	}
	return errs
}

// Total computes the draft's price via the one pricing function.
func (d Draft) Total() float64 {
	return CalculatePrice(d.Frequency, ParseDogCount(d.NumDogs))
}

// DogCount returns the parsed dog count.
func (d Draft) DogCount() int {
	return ParseDogCount(d.NumDogs)
}

// CustomerName joins the name fields the way the customer record stores them.
func (d Draft) CustomerName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// FullAddress renders the formatted service address stored on the booking.
func (d Draft) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", d.Address, d.City, d.State, d.ZipCode)
}

// LineItemName is the product name shown on the processor's checkout page.
func (d Draft) LineItemName() string {
	dogs := d.DogCount()
	noun := "Dogs"
	if dogs == 1 {
		noun = "Dog"
	}
	return fmt.Sprintf("%s Pet Waste Service - %d %s", d.Frequency.Label(), dogs, noun)
}

// LineItemDescription carries the schedule onto the checkout page.
func (d Draft) LineItemDescription() string {
	return fmt.Sprintf("Service on %s at %s", d.ServiceDate, d.ServiceTime)
}

func requireField(errs map[string]string, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = message
	}
}

func validTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
