package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balneario/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:3000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, int64(5000), cfg.Pricing.GeneralDay)
	assert.Equal(t, int64(100000), cfg.Pricing.MinimumSurcharge)
	assert.Equal(t, 120, cfg.Venue.Capacity)
	assert.Equal(t, 10, cfg.Venue.MinPrivateWeekday)
	assert.Equal(t, 15, cfg.Venue.MinPrivateWeekend)
	assert.Equal(t, 90, cfg.Venue.MaxAdvanceDays)
	assert.Equal(t, models.DefaultPaginationSize, cfg.Bot.PaginationSize)
	assert.Equal(t, "data/cache.db", cfg.Cache.Path)
	assert.Len(t, cfg.Services, 2)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("BALNEARIO_API_URL", "http://api.internal:8080")

	path := writeConfig(t, `
backend:
  base_url: "${BALNEARIO_API_URL}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.internal:8080", cfg.Backend.BaseURL)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "http://localhost:3000"
pricing:
  private_weekday: 30000
venue:
  capacity: 200
availability:
  fail_open: true
services:
  - id: kitchen
    name: "Cocina"
    day_rate: 40000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(30000), cfg.Pricing.PrivateWeekday)
	assert.Equal(t, 200, cfg.Venue.Capacity)
	assert.True(t, cfg.Availability.FailOpen)
	require.Len(t, cfg.Services, 1)
	assert.Equal(t, int64(40000), cfg.Services[0].DayRate)
}

func TestLoadRejectsMissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
venue:
  capacity: 120
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "base_url")
}

func TestValidateServices(t *testing.T) {
	t.Run("duplicate id", func(t *testing.T) {
		err := ValidateServices([]models.Service{
			{ID: "kitchen", Name: "Cocina", DayRate: 25000},
			{ID: "kitchen", Name: "Cocina 2", DayRate: 30000},
		})
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("empty id", func(t *testing.T) {
		err := ValidateServices([]models.Service{{Name: "Cocina"}})
		assert.ErrorContains(t, err, "empty id")
	})

	t.Run("negative rate", func(t *testing.T) {
		err := ValidateServices([]models.Service{{ID: "room", Name: "Cuarto", DayRate: -1}})
		assert.ErrorContains(t, err, "negative")
	})
}

func TestServiceCatalog(t *testing.T) {
	cfg := &Config{Services: []models.Service{
		{ID: models.ServiceKitchen, Name: "Cocina", DayRate: 25000},
		{ID: models.ServiceRoom, Name: "Cuarto", DayRate: 50000},
	}}

	catalog := cfg.ServiceCatalog()
	require.Len(t, catalog, 2)
	assert.Equal(t, int64(50000), catalog[models.ServiceRoom].DayRate)
}
