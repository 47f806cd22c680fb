package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "BOOKING"

type Config struct {
	Store  StoreConfig
	App    AppConfig
	Events EventsConfig
}

type StoreConfig struct {
	Driver      string
	TrainFile   string
	VehicleFile string
	Strict      bool
	DatabaseDSN string
}

type AppConfig struct {
	HTTPAddr string
	LogLevel string
	LogPath  string
	Debug    bool
}

type EventsConfig struct {
	Driver        string
	RedisAddr     string
	KafkaBrokers  []string
	ConsumerGroup string
}

// Flags registers the command line overrides shared by every binary.
func Flags(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "path to a config file (yaml, json, toml or env)")
	flags.String("train-file", "", "train store file")
	flags.String("vehicle-file", "", "vehicle store file")
	flags.Bool("strict-store", false, "fail on corrupt store files instead of reading them as empty")
	flags.String("store-driver", "", "file or postgres")
	flags.String("http-addr", "", "HTTP listen address")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("events-driver", "", "memory, channel, redis or kafka")
	return flags
}

// Load resolves configuration from defaults, an optional config file, BOOKING_*
// environment variables and flags, later sources winning. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
		if path, _ := flags.GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:      v.GetString("store_driver"),
			TrainFile:   v.GetString("train_file"),
			VehicleFile: v.GetString("vehicle_file"),
			Strict:      v.GetBool("strict_store"),
			DatabaseDSN: v.GetString("database_dsn"),
		},
		App: AppConfig{
			HTTPAddr: v.GetString("http_addr"),
			LogLevel: v.GetString("log_level"),
			LogPath:  v.GetString("log_path"),
			Debug:    v.GetBool("debug"),
		},
		Events: EventsConfig{
			Driver:        v.GetString("events_driver"),
			RedisAddr:     v.GetString("redis_addr"),
			KafkaBrokers:  splitList(v.GetStringSlice("kafka_brokers")),
			ConsumerGroup: v.GetString("consumer_group"),
		},
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "file":
		if c.Store.TrainFile == "" || c.Store.VehicleFile == "" {
			errs = append(errs, errors.New("train_file and vehicle_file are required for the file store"))
		}
	case "postgres":
		if c.Store.DatabaseDSN == "" {
			errs = append(errs, errors.New("database_dsn is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_driver %q", c.Store.Driver))
	}

	switch c.Events.Driver {
	case "memory", "channel":
	case "redis":
		if c.Events.RedisAddr == "" {
			errs = append(errs, errors.New("redis_addr is required for the redis event driver"))
		}
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("kafka_brokers is required for the kafka event driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events_driver %q", c.Events.Driver))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store_driver", "file")
	v.SetDefault("train_file", "trains.json")
	v.SetDefault("vehicle_file", "vehicles.json")
	v.SetDefault("strict_store", false)
	v.SetDefault("database_dsn", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_path", "")
	v.SetDefault("debug", false)
	v.SetDefault("events_driver", "memory")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("kafka_brokers", []string{})
	v.SetDefault("consumer_group", "ticket-booking")
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// splitList accepts both repeated values and a single comma separated string,
// which is what an env var gives us.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
