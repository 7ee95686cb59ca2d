package weather

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatePrecipitation(t *testing.T) {
	// Humid, low-pressure observation: (80-50)*0.5 = 15, times 1.5.
	assert.Equal(t, 22.5, EstimatePrecipitation(80, 995))

	// Same humidity at normal pressure skips the low-pressure factor.
	assert.Equal(t, 15.0, EstimatePrecipitation(80, 1013))

	// Dry air never yields negative precipitation.
	assert.Equal(t, 0.0, EstimatePrecipitation(30, 990))
	assert.Equal(t, 0.0, EstimatePrecipitation(50, 1013))
}

func TestFeelsLike(t *testing.T) {
	// Heat-index branch above 27°C.
	assert.Equal(t, 33.5, FeelsLike(30, 80, 5))

	// Wind-chill branch below 10°C.
	assert.Equal(t, 2.5, FeelsLike(5, 50, 5))

	// Between the two the temperature passes through untouched.
	assert.Equal(t, 20.0, FeelsLike(20, 99, 40))
}

func TestEstimateVisibility(t *testing.T) {
	// No particulate data defaults to 10 km.
	assert.Equal(t, 10.0, EstimateVisibility(0, 0))

	// avgPM 50 -> 15 - 5 = 10 km.
	assert.Equal(t, 10.0, EstimateVisibility(40, 60))

	// Heavy particulates floor at 1 km.
	assert.Equal(t, 1.0, EstimateVisibility(300, 300))
}

func TestNormalizeDerivedFields(t *testing.T) {
	n := NewNormalizer(rand.NewSource(1))

	obs := CityObservation{
		City:        "Mumbai",
		Temperature: 30,
		Humidity:    80,
		Pressure:    995,
		WindSpeed:   5,
		Condition:   "Clouds",
		O3:          40,
	}
	rec := n.Normalize(obs)

	assert.Equal(t, 22.5, rec.Precipitation)
	assert.Equal(t, 33.5, rec.FeelsLike)
	assert.Equal(t, 10.0, rec.Visibility)
	assert.Equal(t, "Clouds", rec.Condition, "supplied condition must not be replaced")

	// UV is stochastic but bounded: o3/10 + [0,3), clamped to [0,11].
	assert.GreaterOrEqual(t, rec.UVIndex, 4.0)
	assert.LessOrEqual(t, rec.UVIndex, 7.0)
}

func TestNormalizeUVDefaults(t *testing.T) {
	n := NewNormalizer(rand.NewSource(1))

	rec := n.Normalize(CityObservation{Temperature: 20})
	assert.Equal(t, 5.0, rec.UVIndex, "no ozone reading defaults the UV index")

	// Extreme ozone clamps at 11.
	rec = n.Normalize(CityObservation{Temperature: 20, O3: 500})
	assert.Equal(t, 11.0, rec.UVIndex)
}

func TestNormalizeDeterministicExceptUV(t *testing.T) {
	obs := CityObservation{
		City:        "Cairo",
		Temperature: 28,
		Humidity:    65,
		Pressure:    1008,
		WindSpeed:   12,
		Condition:   "Clear",
	}

	a := NewNormalizer(rand.NewSource(7)).Normalize(obs)
	b := NewNormalizer(rand.NewSource(99)).Normalize(obs)

	assert.Equal(t, a.Precipitation, b.Precipitation)
	assert.Equal(t, a.FeelsLike, b.FeelsLike)
	assert.Equal(t, a.Visibility, b.Visibility)
	assert.Equal(t, a.Condition, b.Condition)
}

func TestNormalizeInventsConditionWhenMissing(t *testing.T) {
	n := NewNormalizer(rand.NewSource(1))

	rec := n.Normalize(CityObservation{
		City:        "Delhi",
		HealthLevel: HealthGood,
	})
	require.NotEmpty(t, rec.Condition)
	assert.Contains(t, []string{"Clear", "Sunny", "Partly Cloudy"}, rec.Condition)

	rec = n.Normalize(CityObservation{
		City:        "Lahore",
		HealthLevel: HealthUnhealthy,
	})
	assert.Contains(t, []string{"Rainy", "Cloudy"}, rec.Condition)
}

func TestNormalizeAllMapsOneToOne(t *testing.T) {
	n := NewNormalizer(rand.NewSource(1))

	records := n.NormalizeAll([]CityObservation{
		{City: "Tokyo", Temperature: 22},
		{City: "London", Temperature: 15},
	})
	require.Len(t, records, 2)
	assert.Equal(t, "Tokyo", records[0].City)
	assert.Equal(t, "London", records[1].City)
}
