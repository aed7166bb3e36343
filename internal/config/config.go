// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"os"
	"time"

	"cluster_chat_server/pkg/constants"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式：dev 或 release
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"` // 无密码留空
	Db       int    `toml:"db"`
	PoolSize int    `toml:"poolSize"`
}

// RelayConfig 跨实例转发配置
type RelayConfig struct {
	// Mode 转发方式："channel"（单进程）、"redis"（发布订阅）或 "kafka"
	Mode string `toml:"mode"`
	// ChannelPrefix 订阅通道名前缀，为空时通道名即用户 id
	ChannelPrefix string `toml:"channelPrefix"`
}

// KafkaConfig Kafka 消息队列配置
type KafkaConfig struct {
	HostPort        string        `toml:"hostPort"`        // 如 "localhost:9092"
	RelayTopic      string        `toml:"relayTopic"`      // 转发主题，所有实例共用
	Partition       int           `toml:"partition"`       // 创建主题时的分区数
	Timeout         time.Duration `toml:"timeout"`         // 读写超时（秒）
	GroupPrefix     string        `toml:"groupPrefix"`     // 消费组前缀，实际消费组为前缀 + 实例 id
	AutoCreateTopic bool          `toml:"autoCreateTopic"` // 启动时是否创建主题
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// ServerConfig 聊天服务实例配置
type ServerConfig struct {
	InstanceID     string `toml:"instanceId"`     // 实例标识，为空时启动时生成 uuid
	SendBufferSize int    `toml:"sendBufferSize"` // 每个连接的待发送队列长度
	ReadLimit      int64  `toml:"readLimit"`      // 单条消息最大字节数
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig   `toml:"mainConfig"`
	MysqlConfig  `toml:"mysqlConfig"`
	RedisConfig  `toml:"redisConfig"`
	RelayConfig  `toml:"relayConfig"`
	KafkaConfig  `toml:"kafkaConfig"`
	LogConfig    `toml:"logConfig"`
	ServerConfig `toml:"serverConfig"`
}

// EnvConfigPath 指定配置文件路径的环境变量
const EnvConfigPath = "CHAT_CONFIG"

// config 全局配置单例，延迟加载
var config *Config

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml", // 从子目录运行时的路径
	"../../configs/config.toml",
}

// LoadConfig 按顺序尝试加载配置文件，找到第一个可用的即停止
// 设置了 CHAT_CONFIG 环境变量时只加载该文件
func LoadConfig() error {
	if path := os.Getenv(EnvConfigPath); path != "" {
		conf, err := Load(path)
		if err != nil {
			return err
		}
		config = conf
		return nil
	}
	for _, path := range searchPaths {
		if conf, err := Load(path); err == nil {
			config = conf
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Load 加载指定路径的配置文件并填充默认值
func Load(path string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	conf.applyDefaults()
	return conf, nil
}

// Default 返回只包含默认值的配置
func Default() *Config {
	conf := new(Config)
	conf.applyDefaults()
	return conf
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "cluster_chat_server"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.RelayConfig.Mode == "" {
		c.RelayConfig.Mode = "channel"
	}
	if c.RedisConfig.Port == 0 {
		c.RedisConfig.Port = 6379
	}
	if c.RedisConfig.PoolSize == 0 {
		c.RedisConfig.PoolSize = 50
	}
	if c.RelayTopic == "" {
		c.RelayTopic = "chat_relay"
	}
	if c.Partition == 0 {
		c.Partition = 1
	}
	if c.Timeout == 0 {
		c.Timeout = 1
	}
	if c.GroupPrefix == "" {
		c.GroupPrefix = "chat_relay_"
	}
	if c.SendBufferSize == 0 {
		c.SendBufferSize = constants.SEND_BUFFER_SIZE
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = constants.READ_LIMIT
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		if err := LoadConfig(); err != nil {
			config = Default()
		}
	}
	return config
}
