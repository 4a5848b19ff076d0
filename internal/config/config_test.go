package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("TEST_PORT", "8081")
	assert.Equal(t, 8081, EnvIntDefault("TEST_PORT", 1))

	t.Setenv("TEST_PORT", "not-a-number")
	assert.Equal(t, 1, EnvIntDefault("TEST_PORT", 1))

	assert.Equal(t, 7, EnvIntDefault("TEST_PORT_UNSET", 7))
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "DATA_DIR", "STORE_DSN", "KAFKA_BROKERS", "ES_INDEX", "ADMIN_JWT_SECRET"} {
		t.Setenv(k, "")
	}

	cfg := Load("")
	assert.Equal(t, 3000, cfg.ServerPort)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "sweethome.db", cfg.StoreDSN)
	assert.Equal(t, "orders", cfg.ESIndex)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.AdminJWTSecret)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("KAFKA_BROKERS=k1:9092,k2:9092\n"), 0o600))

	// godotenv never overrides variables that are already set.
	t.Setenv("KAFKA_BROKERS", "")
	require.NoError(t, os.Unsetenv("KAFKA_BROKERS"))
	t.Cleanup(func() { _ = os.Unsetenv("KAFKA_BROKERS") })

	cfg := Load(envFile)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestValidate(t *testing.T) {
	ok := Config{DataDir: "data", StoreDSN: "sweethome.db", ServerPort: 3000}
	require.NoError(t, ok.Validate())

	noDir := ok
	noDir.DataDir = " "
	assert.ErrorContains(t, noDir.Validate(), "DATA_DIR")

	noDSN := ok
	noDSN.StoreDSN = ""
	assert.ErrorContains(t, noDSN.Validate(), "STORE_DSN")

	badPort := ok
	badPort.ServerPort = 70000
	assert.ErrorContains(t, badPort.Validate(), "SERVER_PORT")
}
