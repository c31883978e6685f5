package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "808-555-0142",
		Address:     "15-123 Hibiscus St",
		City:        "Pahoa",
		State:       "HI",
		ZipCode:     "96778",
		ServiceDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		ServiceTime: TimeSlots[0],
		NumDogs:     "2",
		Frequency:   FrequencyWeekly,
	}
}

func TestValidateCustomerInfo(t *testing.T) {
	t.Run("valid draft passes", func(t *testing.T) {
		assert.Empty(t, validDraft().ValidateCustomerInfo())
	})

	t.Run("missing fields are reported per field", func(t *testing.T) {
		errs := Draft{}.ValidateCustomerInfo()
		for _, field := range []string{"first_name", "last_name", "email", "phone", "address", "city", "state", "zip_code"} {
			assert.Contains(t, errs, field)
		}
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		for _, bad := range []string{"not-an-email", "a@b", "@example.com", "jane@", "jane doe@example.com"} {
			d := validDraft()
			d.Email = bad
			assert.Contains(t, d.ValidateCustomerInfo(), "email", "email %q should fail", bad)
		}
	})
}

func TestValidateSchedule(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	t.Run("date today is accepted", func(t *testing.T) {
		d := validDraft()
		d.ServiceDate = "2026-08-29"
		assert.Empty(t, d.ValidateSchedule(now))
	})

	t.Run("date in the past is rejected", func(t *testing.T) {
		d := validDraft()
		d.ServiceDate = "2026-08-28"
		assert.Contains(t, d.ValidateSchedule(now), "service_date")
	})

	t.Run("unparseable date is rejected", func(t *testing.T) {
		d := validDraft()
		d.ServiceDate = "next tuesday"
		assert.Contains(t, d.ValidateSchedule(now), "service_date")
	})

	t.Run("unknown time slot is rejected", func(t *testing.T) {
		d := validDraft()
		d.ServiceTime = "6:00 PM - 8:00 PM"
		assert.Contains(t, d.ValidateSchedule(now), "service_time")
	})

	t.Run("missing date and time are both reported", func(t *testing.T) {
		d := validDraft()
		d.ServiceDate = ""
		d.ServiceTime = ""
		errs := d.ValidateSchedule(now)
		assert.Contains(t, errs, "service_date")
		assert.Contains(t, errs, "service_time")
	})
}

func TestNewDraftPrefill(t *testing.T) {
	id := Identity{
		IsAuthenticated: true,
		CustomerID:      "c-1",
		Name:            "Jane Doe",
		Email:           "jane@example.com",
		Phone:           "808-555-0142",
		Address:         "15-123 Hibiscus St",
	}

	d := NewDraft(id, "monthly", "3")
	assert.Equal(t, "Jane", d.FirstName)
	assert.Equal(t, "Doe", d.LastName)
	assert.Equal(t, "jane@example.com", d.Email)
	assert.Equal(t, "15-123 Hibiscus St", d.Address)
	assert.Equal(t, FrequencyMonthly, d.Frequency)
	assert.Equal(t, "3", d.NumDogs)
	assert.Equal(t, "Pahoa", d.City)
	assert.Equal(t, "HI", d.State)
	assert.Equal(t, "96778", d.ZipCode)
}

func TestNewDraftGuestDefaults(t *testing.T) {
	d := NewDraft(Identity{}, "", "")
	assert.Equal(t, FrequencyWeekly, d.Frequency)
	assert.Equal(t, "1", d.NumDogs)
	assert.Empty(t, d.Email)
}

func TestDraftProjections(t *testing.T) {
	d := validDraft()

	require.Equal(t, 24.99, d.Total())
	assert.Equal(t, "Jane Doe", d.CustomerName())
	assert.Equal(t, "15-123 Hibiscus St, Pahoa, HI 96778", d.FullAddress())
	assert.Equal(t, "Weekly Pet Waste Service - 2 Dogs", d.LineItemName())
	assert.Contains(t, d.LineItemDescription(), d.ServiceDate)
	assert.Contains(t, d.LineItemDescription(), d.ServiceTime)

	d.NumDogs = "1"
	assert.Equal(t, "Weekly Pet Waste Service - 1 Dog", d.LineItemName())
}
