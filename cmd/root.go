package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "skillbridge"
)

type Config struct {
	Server    *ServerConfig    `mapstructure:"server"`
	Storage   *StorageConfig   `mapstructure:"storage"`
	Documents *DocumentsConfig `mapstructure:"documents"`
	Sessions  *SessionsConfig  `mapstructure:"sessions"`
	AI        *AIConfig        `mapstructure:"ai"`
	Events    *EventsConfig    `mapstructure:"events"`
}

type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	ReadTimeout time.Duration `mapstructure:"read-timeout"`
	RateLimit   float64       `mapstructure:"rate-limit"`
	RateBurst   int           `mapstructure:"rate-burst"`
	TrustProxy  bool          `mapstructure:"trust-proxy"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data-dir"`
	Seed    bool   `mapstructure:"seed"`
}

type DocumentsConfig struct {
	Dir     string   `mapstructure:"dir"`
	Watch   bool     `mapstructure:"watch"`
	Markers []string `mapstructure:"markers"`
}

type SessionsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type EventsConfig struct {
	NATSURL string `mapstructure:"nats-url"`
	Subject string `mapstructure:"subject"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillbridge is a chat assistant answering questions about job vacancies and the SkillBridge documents",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "SKILLBRIDGE_GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding SKILLBRIDGE_GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("events.nats-url", "SKILLBRIDGE_NATS_URL"); err != nil {
		log.Fatalf("binding SKILLBRIDGE_NATS_URL environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillbridge.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read-timeout", 10*time.Second)
	v.SetDefault("server.rate-limit", 2)
	v.SetDefault("server.rate-burst", 10)
	v.SetDefault("server.trust-proxy", false)
	v.SetDefault("storage.data-dir", "./data")
	v.SetDefault("storage.seed", true)
	v.SetDefault("documents.dir", "./doc")
	v.SetDefault("documents.watch", true)
	v.SetDefault("documents.markers", []string{"pdf", "skillbridge", "skill bridge"})
	v.SetDefault("sessions.ttl", 30*time.Minute)
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", 20*time.Second)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 2)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("events.subject", "skillbridge.jobs")
}

func initConfig() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults cover everything, so only an explicitly requested or broken
	// config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	return config, nil
}
