package config

import (
	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const defaultConfigPath = "config/config-example.yml"

type AppConfig struct {
	Port        uint   `yaml:"port" env:"PORT" default:"8080"`
	Environment string `yaml:"environment" env:"APP_ENV" default:"development"`
}

type ChainConfig struct {
	Rpc         string `yaml:"rpc" env:"RPC_URL"`              // 节点 rpc 地址
	PrivateKey  string `yaml:"privateKey" env:"PRIVATE_KEY"`   // 签名私钥 为空时无法发送交易
	ChainID     int64  `yaml:"chainId" env:"CHAIN_ID"`         // 为 0 时从节点查询
	EnsRegistry string `yaml:"ensRegistry" env:"ENS_REGISTRY"` // 为空使用主网注册表
}

type ContractsConfig struct {
	CollectionBytecode string `yaml:"collectionBytecode" env:"COLLECTION_BYTECODE"` // 合集合约创建字节码
	IpfsGateway        string `yaml:"ipfsGateway" env:"IPFS_GATEWAY" default:"https://ipfs.io/ipfs/"`
	MintName           string `yaml:"mintName" default:"Serum NFT"`
	MintDescription    string `yaml:"mintDescription" default:"Issued by Adam."`
	MintImage          string `yaml:"mintImage"`
	CollectionName     string `yaml:"collectionName" default:"Serum Collection"`
	CollectionSymbol   string `yaml:"collectionSymbol" default:"S3"`
}

type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled" env:"NOTIFY_ENABLED"`
	Driver   string `yaml:"driver" env:"NOTIFY_DRIVER" default:"discord"` // discord 或 amqp
	Webhook  string `yaml:"webhook" env:"DISCORD_WEBHOOK"`
	AmqpUrl  string `yaml:"amqpUrl" env:"AMQP_URL"`
	Exchange string `yaml:"exchange" env:"AMQP_EXCHANGE" default:"chain-console"`
}

type JournalConfig struct {
	Driver      string `yaml:"driver" env:"JOURNAL_DRIVER" default:"none"` // none redis leveldb
	RedisAddr   string `yaml:"redisAddr" env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass   string `yaml:"redisPass" env:"REDIS_PASSWORD"`
	RedisDB     int    `yaml:"redisDB" env:"REDIS_DB"`
	LeveldbPath string `yaml:"leveldbPath" env:"LEVELDB_PATH" default:"data/journal"`
}

type AIConfig struct {
	ApiKey  string `yaml:"apiKey" env:"OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	BaseUrl string `yaml:"baseUrl" env:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
}

type Config struct {
	App       AppConfig
	Chain     ChainConfig
	Contracts ContractsConfig
	Notify    NotifyConfig
	Journal   JournalConfig
	AI        AIConfig `yaml:"ai"`
}

// NewConfig 先加载 .env 再读取配置文件 环境变量优先
func NewConfig(confPath string) (Config, error) {
	var config Config
	if err := godotenv.Load(); err == nil {
		log.Info().Msgf("loaded .env")
	}
	if confPath == "" {
		confPath = defaultConfigPath
	}
	err := configor.Load(&config, confPath)
	if err != nil {
		return config, err
	}
	return config, nil
}
