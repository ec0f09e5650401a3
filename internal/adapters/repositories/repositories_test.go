package repositories

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"trip-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed(filepath.Join("testdata", "plans.json"))
	require.NoError(t, err)
	require.Len(t, seed.Trips, 2)
	require.Len(t, seed.Plans, 1)
	assert.Len(t, seed.Plans[0].Stops, 3)
	assert.Nil(t, seed.Trips[1].Lat)
}

func TestLoadSeedRejectsInvalidData(t *testing.T) {
	cases := map[string]string{
		"unknown trip":    `{"trips":[],"plans":[{"id":"p","stops":[{"id":"s","trip_id":"x"}]}]}`,
		"duplicate stop":  `{"plans":[{"id":"p","stops":[{"id":"s"},{"id":"s"}]}]}`,
		"half coordinate": `{"trips":[{"id":"t","name":"T","lat":47}]}`,
		"empty plan id":   `{"plans":[{"id":" "}]}`,
		"not json":        `[`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadSeed(path)
			assert.Error(t, err)
		})
	}
}

func TestPlanStopRowToStop(t *testing.T) {
	withTrip := planStopRow{
		ID:       "s1",
		Sequence: 1,
		TripName: sql.NullString{String: "Rheinfall", Valid: true},
		Lat:      sql.NullFloat64{Float64: 47.6779, Valid: true},
		Lng:      sql.NullFloat64{Float64: 8.6155, Valid: true},
		Address:  sql.NullString{String: "Rheinfallquai", Valid: true},
	}
	s := withTrip.toStop()
	assert.Equal(t, "Rheinfall", s.DisplayName)
	require.NotNil(t, s.RawCoordinate)
	assert.Equal(t, domain.Coordinates{Lat: 47.6779, Lng: 8.6155}, *s.RawCoordinate)

	custom := planStopRow{
		ID:             "s3",
		Sequence:       3,
		CustomLocation: sql.NullString{String: " Bahnhofplatz, Bern ", Valid: true},
	}
	s = custom.toStop()
	assert.Equal(t, "Bahnhofplatz, Bern", s.DisplayName)
	assert.Equal(t, "Bahnhofplatz, Bern", s.Address)
	assert.Nil(t, s.RawCoordinate)

	// A trip with only one axis stored is not placed directly.
	partial := planStopRow{ID: "s4", Lat: sql.NullFloat64{Float64: 47, Valid: true}}
	assert.Nil(t, partial.toStop().RawCoordinate)
}
