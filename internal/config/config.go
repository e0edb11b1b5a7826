// Package config resolves application configuration once at startup.
//
// Values come from defaults, an optional .env file in the working
// directory, and PILLINFO_* environment variables, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Server  ServerConfig
	Capture CaptureConfig
	Log     LogConfig
}

// APIConfig describes the remote lookup service.
type APIConfig struct {
	// BaseURL is the lookup service root, e.g. "http://127.0.0.1:8000/api".
	BaseURL string
}

// ServerConfig describes the local web client server.
type ServerConfig struct {
	Port    int
	MCPPort int // 0 disables the MCP listener
}

// CaptureConfig describes the camera backend.
type CaptureConfig struct {
	DevicePath string
	FFmpegPath string
	Width      int
	Height     int
}

type LogConfig struct {
	Level string
	JSON  bool
}

func defaults() Config {
	return Config{
		API: APIConfig{
			// Local fallback used when no deployment URL is configured.
			BaseURL: "http://127.0.0.1:8000/api",
		},
		Server: ServerConfig{
			Port:    4500,
			MCPPort: 0,
		},
		Capture: CaptureConfig{
			DevicePath: "/dev/video0",
			FFmpegPath: "ffmpeg",
			Width:      1280,
			Height:     720,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load resolves configuration from defaults, .env, and the environment.
func Load() (Config, error) {
	// A missing .env is fine; it only exists in dev checkouts.
	_ = godotenv.Load(".env")
	return loadFromEnv(os.Getenv)
}

func loadFromEnv(getenv func(string) string) (Config, error) {
	cfg := defaults()

	if v := getenv("PILLINFO_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getenv("PILLINFO_SERVER_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing PILLINFO_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	if v := getenv("PILLINFO_MCP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing PILLINFO_MCP_PORT: %w", err)
		}
		cfg.Server.MCPPort = p
	}
	if v := getenv("PILLINFO_CAMERA_DEVICE"); v != "" {
		cfg.Capture.DevicePath = v
	}
	if v := getenv("PILLINFO_FFMPEG"); v != "" {
		cfg.Capture.FFmpegPath = v
	}
	if v := getenv("PILLINFO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("PILLINFO_LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing PILLINFO_LOG_JSON: %w", err)
		}
		cfg.Log.JSON = b
	}

	return cfg, nil
}
