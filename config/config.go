/*
Package config loads engine configuration from file and environment.

Configuration is read by Viper from an optional config.yaml plus
environment variables (SERVER_ADDRESS, DATABASE_PATH, ...). A missing
config file is not an error: defaults and environment cover everything.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Billing    BillingConfig    `mapstructure:"billing"`
	Gym        GymConfig        `mapstructure:"gym"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AttendanceConfig struct {
	// WarningThresholdDays controls the expiry warning at check-in: a
	// membership with this many or fewer days left still grants access
	// but flags a warning.
	WarningThresholdDays int `mapstructure:"warning_threshold_days"`
}

type BillingConfig struct {
	// OverdueReportSchedule is a cron expression for the daily overdue
	// installment report.
	OverdueReportSchedule string `mapstructure:"overdue_report_schedule"`
}

type GymConfig struct {
	Name string `mapstructure:"name"`
}

// Load reads configuration from path (directory containing config.yaml)
// and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.path", "./data/gymflex.db")
	v.SetDefault("attendance.warning_threshold_days", 5)
	v.SetDefault("billing.overdue_report_schedule", "0 8 * * *")
	v.SetDefault("gym.name", "GymFlex")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
