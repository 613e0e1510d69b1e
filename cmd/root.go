package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vslobodin/jobscout/internal/notify"
)

const (
	app = "jobscout"
)

type Config struct {
	// Owner identifies whose profile the interactive commands act on.
	Owner string `mapstructure:"owner"`
	// ProfilesDir holds stored resume profiles as <owner>.json, used by the
	// watch loop to resolve schedule owners.
	ProfilesDir string         `mapstructure:"profiles-dir"`
	Search      map[string]any `mapstructure:"search"`

	Source    *SourceConfig    `mapstructure:"source"`
	Semantic  *SemanticConfig  `mapstructure:"semantic"`
	Assistant *AssistantConfig `mapstructure:"assistant"`
	Notify    *NotifyConfig    `mapstructure:"notify"`
	Store     *StoreConfig     `mapstructure:"store"`
	Watch     *WatchConfig     `mapstructure:"watch"`
}

type SourceConfig struct {
	// Provider selects the job source: "demo" (embedded postings) or "adzuna".
	Provider string        `mapstructure:"provider"`
	Adzuna   *AdzunaConfig `mapstructure:"adzuna"`
}

type AdzunaConfig struct {
	AppID      string `mapstructure:"app-id"`
	AppKey     string `mapstructure:"app-key"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country"`
}

type SemanticConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type AssistantConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type NotifyConfig struct {
	SMTP       *SMTPConfig                 `mapstructure:"smtp"`
	WhatsApp   *WhatsAppConfig             `mapstructure:"whatsapp"`
	Recipients map[string]notify.Recipient `mapstructure:"recipients"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	From         string `mapstructure:"from"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
}

type WhatsAppConfig struct {
	AccountSID    string `mapstructure:"account-sid"`
	AuthToken     string `mapstructure:"auth-token"`
	AuthTokenFile string `mapstructure:"auth-token-file"`
	From          string `mapstructure:"from"`
}

type StoreConfig struct {
	// Driver selects schedule persistence: "memory" or "postgres".
	Driver      string `mapstructure:"driver"`
	DatabaseURL string `mapstructure:"database-url"`
	RedisURL    string `mapstructure:"redis-url"`
}

type WatchConfig struct {
	// Interval is the cron tick spec, e.g. "15m".
	Interval    string `mapstructure:"interval"`
	Concurrency int    `mapstructure:"concurrency"`
	RunTimeout  string `mapstructure:"run-timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout matches resumes against job postings and watches recurring searches",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("store.database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("store.redis-url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	rootCmd.PersistentPreRunE = initConfig

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// initConfig runs as the root PersistentPreRunE, so cmd is the executed leaf
// command even for nested invocations like "schedule list".
func initConfig(cmd *cobra.Command, _ []string) error {
	// .env is optional; when present its variables feed the env bindings.
	_ = godotenv.Load()

	// Config is needed only for the operational commands.
	if !needsConfig(cmd) {
		return nil
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	return viper.ReadInConfig()
}

// needsConfig walks from the executed command up to the root. Cobra marks only
// the leaf as called, so subcommands are matched through their parent.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c {
		case matchCmd, watchCmd, scheduleCmd:
			return true
		}
	}
	return false
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
