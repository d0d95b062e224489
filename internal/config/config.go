package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Storage       StorageConfig       `yaml:"storage"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	LLM           LLMConfig           `yaml:"llm"`
	Summarizer    SummarizerConfig    `yaml:"summarizer"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Usage         UsageConfig         `yaml:"usage"`
	Redis         RedisConfig         `yaml:"redis"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int64    `yaml:"max_upload_mb"`
	MaxDocumentKB  int64    `yaml:"max_document_kb"`
}

type FFmpegConfig struct {
	BinaryPath     string        `yaml:"binary_path"`
	AudioBitrate   string        `yaml:"audio_bitrate"`
	MinOutputBytes int64         `yaml:"min_output_bytes"`
	Timeout        time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Bucket          string        `yaml:"bucket"`
	CredentialsJSON string        `yaml:"credentials_json"`
	SignedURLTTL    time.Duration `yaml:"signed_url_ttl"`
	Timeout         time.Duration `yaml:"timeout"`
}

type TranscriptionConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LLMConfig selects the language-model backend. A nil Temperature means
// unset; an explicit 0 is kept.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	GeminiKeys  []string      `yaml:"gemini_keys"`
	Model       string        `yaml:"model"`
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SummarizerConfig struct {
	ChunkWords       int `yaml:"chunk_words"`
	ChunkChars       int `yaml:"chunk_chars"`
	SinglePassChars  int `yaml:"single_pass_chars"`
	MeetingWordLimit int `yaml:"meeting_word_limit"`
}

type JobsConfig struct {
	Backend       string        `yaml:"backend"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	TTL           time.Duration `yaml:"ttl"`
}

type UsageConfig struct {
	Backend string `yaml:"backend"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultTemperature = 0.2

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func (c *Config) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Transcription.URL == "" {
		return fmt.Errorf("transcription.url is required")
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider openai")
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "https://api.openai.com/v1"
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-3.5-turbo-16k"
		}
	case ProviderGemini:
		if len(c.LLM.GeminiKeys) == 0 {
			return fmt.Errorf("llm.gemini_keys is required for provider gemini")
		}
		if c.LLM.Model == "" {
			c.LLM.Model = "gemini-2.5-flash"
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}

	for name, backend := range map[string]*string{"jobs.backend": &c.Jobs.Backend, "usage.backend": &c.Usage.Backend} {
		if *backend == "" {
			*backend = BackendMemory
		}
		if *backend != BackendMemory && *backend != BackendRedis {
			return fmt.Errorf("%s %q is not supported", name, *backend)
		}
		if *backend == BackendRedis && c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when %s is redis", name)
		}
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 500
	}
	if c.Server.MaxDocumentKB == 0 {
		c.Server.MaxDocumentKB = 10 * 1024
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.AudioBitrate == "" {
		c.FFmpeg.AudioBitrate = "192k"
	}
	if c.FFmpeg.MinOutputBytes == 0 {
		c.FFmpeg.MinOutputBytes = 10_000
	}
	if c.FFmpeg.Timeout == 0 {
		c.FFmpeg.Timeout = 10 * time.Minute
	}
	if c.Storage.SignedURLTTL == 0 {
		c.Storage.SignedURLTTL = 15 * time.Minute
	}
	if c.Storage.Timeout == 0 {
		c.Storage.Timeout = 2 * time.Minute
	}
	if c.Transcription.Timeout == 0 {
		c.Transcription.Timeout = 10 * time.Minute
	}
	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 2 * time.Minute
	}
	if c.Summarizer.ChunkWords == 0 {
		c.Summarizer.ChunkWords = 4000
	}
	if c.Summarizer.ChunkChars == 0 {
		c.Summarizer.ChunkChars = 12000
	}
	if c.Summarizer.SinglePassChars == 0 {
		c.Summarizer.SinglePassChars = 13000
	}
	if c.Summarizer.MeetingWordLimit == 0 {
		c.Summarizer.MeetingWordLimit = 400
	}
	if c.Jobs.MaxConcurrent == 0 {
		c.Jobs.MaxConcurrent = 2
	}
	if c.Jobs.TTL == 0 {
		c.Jobs.TTL = 24 * time.Hour
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// TemperatureOrDefault returns the configured temperature, or the default when unset.
func (c LLMConfig) TemperatureOrDefault() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}
