package dream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsToPrivate(t *testing.T) {
	req := CreateDreamRequest{Title: "Falling", Content: "Endless stairs."}

	require.NoError(t, req.Validate())
	assert.Equal(t, PrivacyPrivate, req.PrivacySetting)
	assert.False(t, req.RecordedAt.IsZero())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	req := CreateDreamRequest{Content: "no title"}
	assert.Error(t, req.Validate())

	req = CreateDreamRequest{Title: "no content"}
	assert.Error(t, req.Validate())
}

func TestValidateEnergyRange(t *testing.T) {
	good := 7
	req := CreateDreamRequest{Title: "t", Content: "c", Energy: &good}
	assert.NoError(t, req.Validate())

	for _, bad := range []int{0, 11, -3} {
		v := bad
		req := CreateDreamRequest{Title: "t", Content: "c", Energy: &v}
		assert.Error(t, req.Validate(), "energy %d should be rejected", bad)
	}
}

func TestValidatePrivacySetting(t *testing.T) {
	req := CreateDreamRequest{Title: "t", Content: "c", PrivacySetting: PrivacyCircleOnly}
	assert.NoError(t, req.Validate())

	req = CreateDreamRequest{Title: "t", Content: "c", PrivacySetting: "FRIENDS_ONLY"}
	assert.Error(t, req.Validate())
}

func TestValidateKeepsExplicitRecordedAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)
	req := CreateDreamRequest{Title: "t", Content: "c", RecordedAt: at}

	require.NoError(t, req.Validate())
	assert.Equal(t, at, req.RecordedAt)
}
