package main

import (
	"fmt"
	"os"
	"path/filepath"

	"refbot/internal/config"
	"refbot/internal/storage/sqlite"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries the configuration shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "refbot",
		Short:         "Referee bot for play-by-message football games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default ./refbot.yaml or $HOME/.config/refbot/refbot.yaml)")
	root.PersistentFlags().String("db", "", "SQLite database path")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = c.v.BindPFlag("database_path", root.PersistentFlags().Lookup("db"))
	_ = c.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(c.telegramCmd(), c.statusCmd(), c.rollbackCmd(), c.kickCmd())
	return root
}

func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.SetConfigName("refbot")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".config", "refbot"))
		}
	}
	c.v.SetEnvPrefix("REFBOT")
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || c.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// loadConfig parses the YAML file viper found and applies flag and
// REFBOT_* environment overrides.
func (c *cli) loadConfig() (*config.GameConfig, error) {
	cfg := config.Default()
	if path := c.v.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = config.Parse(data); err != nil {
			return nil, err
		}
	}
	if s := c.v.GetString("database_path"); s != "" {
		cfg.DatabasePath = s
	}
	if s := c.v.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
	if s := c.v.GetString("telegram_token"); s != "" {
		cfg.Telegram.Token = s
	}
	if s := c.v.GetString("revert_secret"); s != "" {
		cfg.RevertSecret = s
	}
	return cfg, nil
}

func (c *cli) openStore() (*sqlite.Store, *config.GameConfig, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}
