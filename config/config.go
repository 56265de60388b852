// Package config loads process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort         uint16 = 25565
	DefaultPollInterval        = time.Minute
	MinPollInterval            = 5 * time.Second
	DefaultStatusPort          = 8170
)

// ServerEntry is one Minecraft server / Discord bot pair, as it appears
// in the SERVERS JSON list.
type ServerEntry struct {
	Token string `json:"token"`
	Host  string `json:"host"`
	Port  uint16 `json:"port"`
}

// Config is the full process configuration.
type Config struct {
	Servers        []ServerEntry
	PollInterval   time.Duration
	StatusChannels []string
	StatusPort     int
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
//
// Variables:
//
//	SERVERS          JSON array of {token, host, port} (required)
//	RATE             poll interval: Go duration, or bare integer in ms
//	STATUS_CHANNELS  comma-separated channel IDs for roster messages
//	STATUS_PORT      HTTP status server port, 0 to disable
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("[CONFIG] Loaded .env file")
	}

	servers, err := parseServers(os.Getenv("SERVERS"))
	if err != nil {
		return nil, err
	}

	interval, err := parseRate(os.Getenv("RATE"))
	if err != nil {
		return nil, err
	}

	statusPort, err := parseStatusPort(os.Getenv("STATUS_PORT"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Servers:        servers,
		PollInterval:   interval,
		StatusChannels: parseChannels(os.Getenv("STATUS_CHANNELS")),
		StatusPort:     statusPort,
	}, nil
}

func parseServers(raw string) ([]ServerEntry, error) {
	if raw == "" {
		return nil, fmt.Errorf("SERVERS is not set; expected a JSON array of {token, host, port}")
	}

	var servers []ServerEntry
	if err := json.Unmarshal([]byte(raw), &servers); err != nil {
		return nil, fmt.Errorf("could not parse SERVERS: %w", err)
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("SERVERS is empty; at least one server is required")
	}

	for i := range servers {
		if servers[i].Token == "" {
			return nil, fmt.Errorf("SERVERS entry %d has no token", i)
		}
		if servers[i].Host == "" {
			return nil, fmt.Errorf("SERVERS entry %d has no host", i)
		}
		if servers[i].Port == 0 {
			servers[i].Port = DefaultPort
		}
	}
	return servers, nil
}

// parseRate accepts a Go duration ("30s") or a bare integer in
// milliseconds, the contract of the original deployment.
func parseRate(raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultPollInterval, nil
	}

	interval, err := time.ParseDuration(raw)
	if err != nil {
		ms, intErr := strconv.Atoi(raw)
		if intErr != nil {
			return 0, fmt.Errorf("could not parse RATE %q: %w", raw, err)
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	if interval < MinPollInterval {
		log.Printf("[CONFIG] RATE %s below minimum, using %s", interval, MinPollInterval)
		interval = MinPollInterval
	}
	return interval, nil
}

func parseChannels(raw string) []string {
	var channels []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			channels = append(channels, id)
		}
	}
	return channels
}

func parseStatusPort(raw string) (int, error) {
	if raw == "" {
		return DefaultStatusPort, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("could not parse STATUS_PORT %q", raw)
	}
	return port, nil
}
