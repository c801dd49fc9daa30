package config

type DecodeConfig struct {
	MaxInputBytes   int64    `yaml:"maxInputBytes"`
	MaxPixels       int      `yaml:"maxPixels"`
	ColorManagement bool     `yaml:"colorManagement"`
	NumWorkers      int      `yaml:"numWorkers"`
	PartialResults  bool     `yaml:"partialResults"`
	AutoOrient      bool     `yaml:"autoOrient"`
	AllowedTypes    []string `yaml:"allowedTypes,flow"`
}

type LoggingConfig struct {
	Directory string `yaml:"directory"`
	Colors    bool   `yaml:"colors"`
	JSON      bool   `yaml:"json"`
	Level     string `yaml:"level"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

type MainConfig struct {
	Decoding DecodeConfig  `yaml:"decoding"`
	Logging  LoggingConfig `yaml:"logging"`
	Sentry   SentryConfig  `yaml:"sentry"`
}
