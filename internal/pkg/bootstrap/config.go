package bootstrap

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 是服务的全量配置，从 YAML 文件加载，个别字段支持环境变量覆盖。
type Config struct {
	App struct {
		Name       string `yaml:"name"`
		Port       int    `yaml:"port"`
		PluginsDir string `yaml:"plugins_dir"` // 积分扩展模块目录
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers           []string `yaml:"brokers"`
			NotificationTopic string   `yaml:"notification_topic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			// 留空表示单实例部署，策略目录锁退化为进程内互斥锁
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`
}

var (
	currentConfig *Config
	configOnce    sync.Once
)

// Init 从 CONFIG_PATH（默认 config.yaml）加载配置。必须在 StartService 之前调用。
func Init() {
	configOnce.Do(func() {
		path := getEnv("CONFIG_PATH", "config.yaml")
		cfg, err := loadConfig(path)
		if err != nil {
			panic(err)
		}
		currentConfig = cfg
	})
}

// GetCurrentConfig 返回已加载的全局配置。
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		panic("bootstrap: config not initialized, call bootstrap.Init() first")
	}
	return currentConfig
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	// 环境变量覆盖，便于容器部署
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		cfg.Infra.Mysql.DSN = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Infra.Redis.Addr = addr
	}
	if dir := os.Getenv("PLUGINS_DIR"); dir != "" {
		cfg.App.PluginsDir = dir
	}

	if cfg.App.Port == 0 {
		cfg.App.Port = 8080
	}
	if cfg.App.PluginsDir == "" {
		cfg.App.PluginsDir = "plugins"
	}
	return &cfg, nil
}

// getEnv 从环境变量中读取配置，缺省时返回 fallback。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
