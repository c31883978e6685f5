package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePrice(t *testing.T) {
	cases := []struct {
		name      string
		frequency Frequency
		dogs      int
		want      float64
	}{
		{"weekly one dog", FrequencyWeekly, 1, 19.99},
		{"weekly two dogs", FrequencyWeekly, 2, 24.99},
		{"biweekly three dogs", FrequencyBiweekly, 3, 34.99},
		{"monthly one dog", FrequencyMonthly, 1, 29.99},
		{"onetime four dogs", FrequencyOnetime, 4, 49.99},
		{"zero dogs prices as one", FrequencyWeekly, 0, 19.99},
		{"negative dogs prices as one", FrequencyMonthly, -3, 29.99},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculatePrice(tc.frequency, tc.dogs))
		})
	}
}

func TestCalculatePriceIsDeterministic(t *testing.T) {
	for _, f := range []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyOnetime} {
		for dogs := 1; dogs <= 6; dogs++ {
			want := basePrices[f] + 5*float64(dogs-1)
			assert.InDelta(t, want, CalculatePrice(f, dogs), 0.001, "frequency=%s dogs=%d", f, dogs)
			assert.Equal(t, CalculatePrice(f, dogs), CalculatePrice(f, dogs))
		}
	}
}

func TestParseDogCount(t *testing.T) {
	assert.Equal(t, 3, ParseDogCount("3"))
	assert.Equal(t, 1, ParseDogCount(""))
	assert.Equal(t, 1, ParseDogCount("abc"))
	assert.Equal(t, 1, ParseDogCount("0"))
	assert.Equal(t, 1, ParseDogCount("-2"))
	assert.Equal(t, 2, ParseDogCount(" 2 "))
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, FrequencyBiweekly, ParseFrequency("biweekly"))
	assert.Equal(t, FrequencyOnetime, ParseFrequency(" ONETIME "))
	assert.Equal(t, FrequencyWeekly, ParseFrequency("quarterly"))
	assert.Equal(t, FrequencyWeekly, ParseFrequency(""))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(2499), Cents(24.99))
	assert.Equal(t, int64(1999), Cents(19.99))
	assert.Equal(t, int64(4999), Cents(49.99))
}
