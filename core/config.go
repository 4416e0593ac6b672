package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		DebugAddress              string
		Host                      string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		LoginRateLimit            int // requests per minute per IP; 0 disables
		AllowedOrigins            []string
		DisableRequestLogs        bool
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		FixturesPath     string
		LogFile          string
		Server           ServerConfig
		defaultFromEmail string
	}
)

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
}

// NewConfig reads the configuration from the environment (and config/.env.<env> if it exists).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "CourseHub")
	v.SetDefault("secretKey", "vk3#t0b-9x@q!m2(ru7w$e1&h8z^c5p+")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("fixturesPath", "")
	v.SetDefault("logFile", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)
	v.SetDefault("server.loginRateLimit", 20)
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.disableRequestLogs", false)

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
	if root, err := projectRoot(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		FixturesPath:    v.GetString("fixturesPath"),
		LogFile:         v.GetString("logFile"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debugAddress"),
			Host:                      v.GetString("server.host"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			LoginRateLimit:            v.GetInt("server.loginRateLimit"),
			AllowedOrigins:            v.GetStringSlice("server.allowedOrigins"),
			DisableRequestLogs:        v.GetBool("server.disableRequestLogs"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}

// NewTestConfig returns a Config suitable for tests: no env lookups, fast tokens, no rate limits.
func NewTestConfig() *Config {
	return &Config{
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		AppName:   "CourseHub",
		SecretKey: "secret",
		Server: ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			DisableRequestLogs:        true,
		},
		defaultFromEmail: "noreply@test.local",
	}
}

// projectRoot walks up from the working directory until it finds go.mod.
// go test runs from the package directory, so a fixed relative path won't do.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir, nil
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return "", os.ErrNotExist
		}
		currDir = newDir
	}
}
