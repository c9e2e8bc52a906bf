package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONWithLevelKey(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "debug")
	assert.Equal(t, logrus.DebugLevel, log.Level)

	log.WithField("component", "test").Debug("Test.Run.Complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["loglevel"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "Test.Run.Complete", entry["msg"])
}

func TestSetupLogging_UnknownLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, SetupLogging("loud").Level)
}
