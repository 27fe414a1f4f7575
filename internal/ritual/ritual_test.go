package ritual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateRitualValidate(t *testing.T) {
	req := CreateRitualRequest{
		Name:        "Evening Dream Preparation",
		Description: "Wind down before sleep.",
		Steps:       []string{"Dim the lights", "Set an intention"},
	}
	assert.NoError(t, req.Validate())
}

func TestCreateRitualValidateWithoutCategory(t *testing.T) {
	// category is optional; only name, description and steps are required.
	req := CreateRitualRequest{
		Name:        "Morning Dream Capture",
		Description: "Write the dream down on waking.",
		Steps:       []string{"Keep a journal by the bed"},
	}
	assert.NoError(t, req.Validate())
	assert.Nil(t, req.Category)
}

func TestCreateRitualValidateRequiresSteps(t *testing.T) {
	req := CreateRitualRequest{Name: "n", Description: "d"}
	assert.Error(t, req.Validate())

	req.Steps = []string{}
	assert.Error(t, req.Validate())
}

func TestCreateRitualValidateRejectsMissingFields(t *testing.T) {
	req := CreateRitualRequest{Description: "d", Steps: []string{"s"}}
	assert.Error(t, req.Validate())

	req = CreateRitualRequest{Name: "n", Steps: []string{"s"}}
	assert.Error(t, req.Validate())
}

func TestCreateRitualValidateEnergyRange(t *testing.T) {
	req := CreateRitualRequest{
		Name:        "n",
		Description: "d",
		Steps:       []string{"s"},
		EnergyRange: &EnergyRange{Min: 2, Max: 6},
	}
	assert.NoError(t, req.Validate())

	for _, bad := range []EnergyRange{{Min: 0, Max: 5}, {Min: 3, Max: 11}, {Min: 8, Max: 2}} {
		er := bad
		req.EnergyRange = &er
		assert.Error(t, req.Validate(), "range %+v should be rejected", bad)
	}
}

func TestLogEntryValidateRating(t *testing.T) {
	good := 8
	req := LogEntryRequest{EffectivenessRating: &good}
	assert.NoError(t, req.Validate())

	for _, bad := range []int{0, 11} {
		v := bad
		req := LogEntryRequest{EffectivenessRating: &v}
		assert.Error(t, req.Validate())
	}
}
