package config

func NewDefaultConfig() MainConfig {
	return MainConfig{
		Decoding: NewDefaultDecodeConfig(),
		Logging: LoggingConfig{
			Directory: "-",
			Colors:    false,
			JSON:      false,
			Level:     "info",
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Environment: "",
			Debug:       false,
		},
	}
}

func NewDefaultDecodeConfig() DecodeConfig {
	return DecodeConfig{
		MaxInputBytes:   104857600, // 100mb
		MaxPixels:       32000000,  // 32M
		ColorManagement: true,
		NumWorkers:      4,
		PartialResults:  false,
		AutoOrient:      true,
		AllowedTypes:    []string{"image/*"},
	}
}
