// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config 聚合了服务运行所需的全部配置。
// 分为两部分: App 是业务相关配置，Infra 是基础设施地址。
type Config struct {
	App struct {
		ServiceName string `yaml:"serviceName"`
		Port        int    `yaml:"port"`
		LogLevel    string `yaml:"logLevel"`
		// OrderRules 是一组 CEL 表达式，每个表达式都必须对下单事实求值为 true，
		// 否则订单在触碰库存之前就会被拒绝。
		OrderRules []string `yaml:"orderRules"`
	} `yaml:"app"`
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"` // "host1:port1,host2:port2"
		} `yaml:"redis"`
		Kafka struct {
			Brokers          string `yaml:"brokers"`
			OrderEventsTopic string `yaml:"orderEventsTopic"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			Enable      bool   `yaml:"enable"`
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`
}

var currentConfig atomic.Pointer[Config]

// LoadConfig 从 YAML 文件加载配置，环境变量可以覆盖关键的基础设施地址。
// path 为空时使用 CONFIG_PATH 环境变量，最后退回到 ./configs/config.yaml。
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = getEnv("CONFIG_PATH", "configs/config.yaml")
	}

	cfg := defaultConfig()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	currentConfig.Store(cfg)
	return cfg, nil
}

// GetCurrentConfig 返回最近一次加载的配置。
// 在 LoadConfig 之前调用会得到默认配置。
func GetCurrentConfig() *Config {
	if cfg := currentConfig.Load(); cfg != nil {
		return cfg
	}
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	currentConfig.Store(cfg)
	return cfg
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.ServiceName = "marketplace-service"
	cfg.App.Port = 8080
	cfg.App.LogLevel = "info"
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/mandi?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addrs = "localhost:6379"
	cfg.Infra.Kafka.Brokers = "localhost:9092"
	cfg.Infra.Kafka.OrderEventsTopic = "order-events"
	cfg.Infra.Zookeeper.Servers = "localhost:2181"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	cfg.Infra.Mysql.DSN = getEnv("MYSQL_DSN", cfg.Infra.Mysql.DSN)
	cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", cfg.Infra.Redis.Addrs)
	cfg.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", cfg.Infra.Kafka.Brokers)
	cfg.Infra.Zookeeper.Servers = getEnv("ZK_SERVERS", cfg.Infra.Zookeeper.Servers)
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
	if v, ok := os.LookupEnv("NACOS_ENABLE"); ok {
		cfg.Infra.Nacos.Enable = strings.EqualFold(v, "true") || v == "1"
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
