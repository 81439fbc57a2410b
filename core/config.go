package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // school timezones must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		AppName         string
		FrontendBaseURL string
		RollbarToken    string
		SendgridApiKey  string

		defaultFromEmail string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Grades   GradesConfig
		Absences AbsencesConfig
	}

	ServerConfig struct {
		Address string
		Host    string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
		TTL      time.Duration
	}

	GradesConfig struct {
		OutOf       float64
		ModulesFile string // optional YAML override of the UE name table
	}

	AbsencesConfig struct {
		SlotDuration time.Duration  // used when an absence has no explicit end
		Location     *time.Location // calendar days of consecutive absences are compared in it
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file
// and environment variables prefixed with the upper-cased env name (eg. DEV_DATABASE_HOST).
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Releve")
	v.SetDefault("build", "dev")
	v.SetDefault("defaultFromEmail", "Releve <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "releve")
	v.SetDefault("database.user", "releve")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 30*24*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("grades.outOf", 20.0)
	v.SetDefault("grades.modulesFile", "")
	v.SetDefault("absences.slotDuration", 90*time.Minute)
	v.SetDefault("absences.timezone", "Europe/Paris")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("absences.timezone"))
	if err != nil {
		return nil, errors.Wrap(err, "loading absences.timezone")
	}

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address: v.GetString("server.address"),
			Host:    v.GetString("server.host"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Grades: GradesConfig{
			OutOf:       v.GetFloat64("grades.outOf"),
			ModulesFile: v.GetString("grades.modulesFile"),
		},
		Absences: AbsencesConfig{
			SlotDuration: v.GetDuration("absences.slotDuration"),
			Location:     loc,
		},
	}
	return conf, nil
}

// configDir returns $CONFIG_DIR or "./config".
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "config"
	}
	return filepath.Join(wd, "config")
}
