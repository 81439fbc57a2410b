package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CONFIG_DIR", t.TempDir())

	conf, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, 20.0, conf.Grades.OutOf)
	assert.Equal(t, 90*time.Minute, conf.Absences.SlotDuration)
	assert.Equal(t, "Europe/Paris", conf.Absences.Location.String())

	t.Setenv("TEST_ABSENCES_TIMEZONE", "Africa/Kinshasa")
	conf, err = NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Kinshasa", conf.Absences.Location.String())

	t.Setenv("TEST_ABSENCES_TIMEZONE", "Mars/Olympus_Mons")
	_, err = NewConfig()
	assert.Error(t, err)
}
