package utils

import (
	"os"
	"path/filepath"
)

type Config struct {
	Addr      string
	OutputDir string
	Headless  bool

	// RanobeLibMe login form credentials. Both empty means the login flow
	// is disabled and the adapter runs unauthenticated.
	RanobeLibLogin string
	RanobeLibPass  string
}

func LoadConfig() Config {
	addr := os.Getenv("RANOBE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	out := os.Getenv("RANOBE_OUTPUT_DIR")
	if out == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = "."
		}
		out = filepath.Join(home, ".ranobe", "out")
	}

	headless := true
	if os.Getenv("RANOBE_HEADLESS") == "0" {
		headless = false
	}

	return Config{
		Addr:           addr,
		OutputDir:      out,
		Headless:       headless,
		RanobeLibLogin: os.Getenv("RANOBELIBME_LOGIN"),
		RanobeLibPass:  os.Getenv("RANOBELIBME_PASS"),
	}
}
