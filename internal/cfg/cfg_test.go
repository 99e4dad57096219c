package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurodetect/internal/common"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		common.EnvConfigFile, common.EnvDataPath, common.EnvUploadDir,
		common.EnvQDAModelPath, common.EnvTabNetModelPath,
		common.EnvListenPort, common.EnvMetricsPort,
		common.EnvPredictTimeout, common.EnvUseCleanedSignal,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, common.DefaultListenPort, settings.ListenPort)
	assert.Equal(t, common.DefaultMetricsPort, settings.MetricsPort)
	assert.Equal(t, 30*time.Second, settings.PredictTimeout)
	assert.Equal(t, "data", settings.DataPath)
	assert.Equal(t, common.DefaultUploadDir, settings.UploadDir)
	assert.Equal(t, common.DefaultQDAModelPath, settings.QDAModelPath)
	assert.Equal(t, common.DefaultTabNetModelPath, settings.TabNetModelPath)
	assert.False(t, settings.UseCleanedSignal)
	assert.Equal(t, int64(16<<20), settings.MaxUploadBytes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(common.EnvListenPort, "8443")
	t.Setenv(common.EnvPredictTimeout, "45s")
	t.Setenv(common.EnvUseCleanedSignal, "true")
	t.Setenv(common.EnvDataPath, "/var/lib/neurodetect")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8443, settings.ListenPort)
	assert.Equal(t, 45*time.Second, settings.PredictTimeout)
	assert.True(t, settings.UseCleanedSignal)
	assert.Equal(t, "/var/lib/neurodetect", settings.DataPath)
}

func TestLoad_InvalidEnvFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv(common.EnvListenPort, "not-a-port")
	t.Setenv(common.EnvPredictTimeout, "soon")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, common.DefaultListenPort, settings.ListenPort)
	assert.Equal(t, 30*time.Second, settings.PredictTimeout)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listenPort: 9000
  metricsPort: 9100
  predictTimeout: 1m
storage:
  dataPath: /data/eeg
  uploadDir: /data/uploads
  maxUploadBytes: 33554432
models:
  qdaPath: models/qda.json
  tabnetPath: models/tabnet.json
pipeline:
  useCleanedSignal: true
`), 0o600))
	t.Setenv(common.EnvConfigFile, path)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, settings.ListenPort)
	assert.Equal(t, 9100, settings.MetricsPort)
	assert.Equal(t, time.Minute, settings.PredictTimeout)
	assert.Equal(t, "/data/eeg", settings.DataPath)
	assert.Equal(t, "/data/uploads", settings.UploadDir)
	assert.Equal(t, int64(32<<20), settings.MaxUploadBytes)
	assert.Equal(t, "models/qda.json", settings.QDAModelPath)
	assert.Equal(t, "models/tabnet.json", settings.TabNetModelPath)
	assert.True(t, settings.UseCleanedSignal)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listenPort: 9000
`), 0o600))
	t.Setenv(common.EnvConfigFile, path)
	t.Setenv(common.EnvListenPort, "8500")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8500, settings.ListenPort)
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(common.EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))
	t.Setenv(common.EnvConfigFile, path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	valid := Settings{
		ListenPort:      8000,
		MetricsPort:     9090,
		PredictTimeout:  30 * time.Second,
		DataPath:        "data",
		UploadDir:       "uploads",
		MaxUploadBytes:  16 << 20,
		QDAModelPath:    "a.json",
		TabNetModelPath: "b.json",
	}
	require.NoError(t, validateSettings(&valid))

	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"port too low", func(s *Settings) { s.ListenPort = 80 }},
		{"port too high", func(s *Settings) { s.MetricsPort = 70000 }},
		{"port collision", func(s *Settings) { s.MetricsPort = s.ListenPort }},
		{"timeout too short", func(s *Settings) { s.PredictTimeout = 100 * time.Millisecond }},
		{"timeout too long", func(s *Settings) { s.PredictTimeout = time.Hour }},
		{"upload size zero", func(s *Settings) { s.MaxUploadBytes = 0 }},
		{"empty data path", func(s *Settings) { s.DataPath = "" }},
		{"empty upload dir", func(s *Settings) { s.UploadDir = "" }},
		{"empty model path", func(s *Settings) { s.QDAModelPath = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)
			assert.Error(t, validateSettings(&s))
		})
	}
}
