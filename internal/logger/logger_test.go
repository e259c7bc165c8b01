package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, newWithOutput(&bytes.Buffer{}, envLocal, "", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, newWithOutput(&bytes.Buffer{}, envDev, "", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, newWithOutput(&bytes.Buffer{}, envProd, "", "").GetLevel())
	assert.Equal(t, logrus.ErrorLevel, newWithOutput(&bytes.Buffer{}, envProd, "error", "").GetLevel())
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, envDev, "", "json")

	log.WithField("operation", "create task").Info("Task created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "create task", entry["operation"])
	assert.Equal(t, "Task created", entry["msg"])
}
