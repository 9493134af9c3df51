package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{level: "", want: logrus.WarnLevel},
		{level: "debug", want: logrus.DebugLevel},
		{level: "INFO", want: logrus.InfoLevel},
		{level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestComponent_TagsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	require.NoError(t, err)

	Component(logger, "graph").WithField("id", "Alpha").Warn("lookup miss")

	out := buf.String()
	assert.Contains(t, out, "component=graph")
	assert.Contains(t, out, "id=Alpha")
	assert.Contains(t, out, "lookup miss")
}

func TestComponent_NilLogger(t *testing.T) {
	entry := Component(nil, "view")
	assert.NotPanics(t, func() { entry.Warn("dropped") })
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "treenotes.log")
	logger, closer, err := OpenFile("info", path)
	require.NoError(t, err)

	logger.Info("started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}
