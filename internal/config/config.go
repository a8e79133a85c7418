package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Addr     string
	TLSCert  string
	TLSKey   string
	LogLevel logrus.Level

	RateLimit float64
	RateBurst int

	LogoPath       string
	LogoURLs       []string
	CompanyName    string
	CompanyAddress string

	// BraceTablesFile replaces the built-in load tables when set.
	BraceTablesFile string
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		LogLevel:    logrus.InfoLevel,
		RateLimit:   5,
		RateBurst:   10,
		LogoPath:    "logo.png",
		CompanyName: "tekhne Consulting Engineers",
	}
}

// Load reads .env files (a missing file is fine) and then the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, name := range files {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", name, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, falling back to Default for unset keys.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("ADDR"); ok {
		c.Addr = v
	}
	c.TLSCert, _ = get("TLS_CERT")
	c.TLSKey, _ = get("TLS_KEY")
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return Config{}, fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}
	if v, ok := get("LOG_LEVEL"); ok {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		c.LogLevel = lvl
	}
	if v, ok := get("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT: invalid value %q", v)
		}
		c.RateLimit = f
	}
	if v, ok := get("RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("RATE_BURST: invalid value %q", v)
		}
		c.RateBurst = n
	}
	if v, ok := lookup("LOGO_PATH"); ok {
		c.LogoPath = strings.TrimSpace(v)
	}
	if v, ok := get("LOGO_URLS"); ok {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.LogoURLs = append(c.LogoURLs, u)
			}
		}
	}
	if v, ok := get("COMPANY_NAME"); ok {
		c.CompanyName = v
	}
	c.CompanyAddress, _ = get("COMPANY_ADDRESS")
	c.BraceTablesFile, _ = get("BRACE_TABLES_FILE")
	return c, nil
}

func (c Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
