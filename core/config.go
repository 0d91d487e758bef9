package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		DisableReqLogs            bool
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	BackendConfig struct {
		BaseURL    string
		Timeout    time.Duration
		MaxRetries int
		CacheTTL   time.Duration
	}

	CatalogConfig struct {
		DefaultLimit    int
		AdminLimit      int
		DashboardLimit  int
		MaxVisiblePages int
	}

	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		Server  ServerConfig
		Backend BackendConfig
		Catalog CatalogConfig
	}
)

// NewConfig loads the configuration of the current environment.
// ENV selects the environment (DEV by default) and is also the prefix of every env var, eg. DEV_BACKEND_BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("backend.baseURL", "")
	conf.SetDefault("backend.localBaseURL", "http://localhost:5000/api/v1")
	conf.SetDefault("backend.timeout", 30*time.Second)
	conf.SetDefault("backend.maxRetries", 3)
	conf.SetDefault("backend.cacheTTL", time.Minute)

	conf.SetDefault("catalog.defaultLimit", 8)
	conf.SetDefault("catalog.adminLimit", 10)
	conf.SetDefault("catalog.dashboardLimit", 4)
	conf.SetDefault("catalog.maxVisiblePages", 5)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	// the production URL wins over the local one
	baseURL := conf.GetString("backend.baseURL")
	if baseURL == "" {
		baseURL = conf.GetString("backend.localBaseURL")
	}

	return &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			DisableReqLogs:            conf.GetBool("server.disableReqLogs"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Backend: BackendConfig{
			BaseURL:    strings.TrimRight(baseURL, "/"),
			Timeout:    conf.GetDuration("backend.timeout"),
			MaxRetries: conf.GetInt("backend.maxRetries"),
			CacheTTL:   conf.GetDuration("backend.cacheTTL"),
		},
		Catalog: CatalogConfig{
			DefaultLimit:    conf.GetInt("catalog.defaultLimit"),
			AdminLimit:      conf.GetInt("catalog.adminLimit"),
			DashboardLimit:  conf.GetInt("catalog.dashboardLimit"),
			MaxVisiblePages: conf.GetInt("catalog.maxVisiblePages"),
		},
	}
}
