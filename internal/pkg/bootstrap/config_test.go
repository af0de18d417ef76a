package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "marketplace-service", cfg.App.ServiceName)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "order-events", cfg.Infra.Kafka.OrderEventsTopic)
}

func TestLoadConfigFromFile(t *testing.T) {
	content := `
app:
  serviceName: marketplace-test
  port: 9090
  orderRules:
    - "total_quantity <= 100"
infra:
  mysql:
    dsn: "user:pass@tcp(db:3306)/mandi"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "marketplace-test", cfg.App.ServiceName)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"total_quantity <= 100"}, cfg.App.OrderRules)
	assert.Equal(t, "user:pass@tcp(db:3306)/mandi", cfg.Infra.Mysql.DSN)
	// 文件没写的字段保持默认值
	assert.Equal(t, "localhost:9092", cfg.Infra.Kafka.Brokers)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	t.Setenv("MYSQL_DSN", "root:secret@tcp(prod-db:3306)/mandi")
	t.Setenv("ZK_SERVERS", "zk1:2181,zk2:2181")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "root:secret@tcp(prod-db:3306)/mandi", cfg.Infra.Mysql.DSN)
	assert.Equal(t, "zk1:2181,zk2:2181", cfg.Infra.Zookeeper.Servers)
}
