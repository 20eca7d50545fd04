package config

import (
	"strings"

	"github.com/spf13/viper"
)

type ServerConfiguration struct {
	Host string `json:"host" mapstructure:"host" default:"0.0.0.0"`
	Port int    `json:"port" mapstructure:"port" default:"8123"`
	// TimeoutS bounds reading one chunk.
	TimeoutS int `json:"timeout_s" mapstructure:"timeout_s" default:"60"`
}

type S3Configuration struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled" default:"false"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint" default:""`
	Key      string `json:"key" mapstructure:"key" default:""`
	Secret   string `json:"secret" mapstructure:"secret" default:""`
	Bucket   string `json:"bucket" mapstructure:"bucket" default:""`
	Region   string `json:"region" mapstructure:"region" default:""`
	Prefix   string `json:"prefix" mapstructure:"prefix" default:""`
	Secure   bool   `json:"secure" mapstructure:"secure" default:"true"`
}

type GridConfiguration struct {
	RowChunkSize int    `json:"row_chunk_size" mapstructure:"row_chunk_size" default:"512"`
	ColChunkSize int    `json:"col_chunk_size" mapstructure:"col_chunk_size" default:"24"`
	LoadingRepr  string `json:"loading_repr" mapstructure:"loading_repr" default:""`
	NullRepr     string `json:"null_repr" mapstructure:"null_repr" default:""`
}

type Configuration struct {
	Server   ServerConfiguration `json:"server" mapstructure:"server"`
	Root     string              `json:"root" mapstructure:"root" default:"."`
	CacheDir string              `json:"cache_dir" mapstructure:"cache_dir" default:"/tmp/quackgrid"`
	LogLevel string              `json:"log_level" mapstructure:"log_level" default:"info"`
	S3       S3Configuration     `json:"s3" mapstructure:"s3"`
	Grid     GridConfiguration   `json:"grid" mapstructure:"grid"`
}

var Config *Configuration

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8123)
	v.SetDefault("server.timeout_s", 60)
	v.SetDefault("root", ".")
	v.SetDefault("cache_dir", "/tmp/quackgrid")
	v.SetDefault("log_level", "info")
	v.SetDefault("s3.secure", true)
	v.SetDefault("grid.row_chunk_size", 512)
	v.SetDefault("grid.col_chunk_size", 24)
}

// InitConfig loads the configuration from file, if set, and from
// QUACKGRID_ prefixed environment variables.
func InitConfig(file string) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("quackgrid")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		err := v.ReadInConfig()
		if err != nil {
			panic(err)
		}
	}
	Config = &Configuration{}
	err := v.Unmarshal(Config)
	if err != nil {
		panic(err)
	}
}
