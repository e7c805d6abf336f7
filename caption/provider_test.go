package caption

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewSelectsMockWhenForced(t *testing.T) {
	viper.Set("caption.force_mock", true)
	viper.Set("caption.api_key", "some-key")
	defer viper.Set("caption.force_mock", false)

	p := New()
	assert.IsType(t, &MockProvider{}, p)
}

func TestNewFallsBackToMockWithoutAPIKey(t *testing.T) {
	viper.Set("caption.force_mock", false)
	viper.Set("caption.api_key", "")

	// The probe must downgrade, never fail startup
	p := New()
	assert.IsType(t, &MockProvider{}, p)
}
