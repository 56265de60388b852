package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/craftwatch/mcstatusbot/config"
)

// ANSI color codes for formatted output
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorBlue  = "\033[34m"
)

// verify-config loads the environment configuration exactly the way the
// bot does and prints what it resolved to, without touching Discord or
// any Minecraft server.
func main() {
	fmt.Printf("%s--- mcstatusbot Config Verifier ---%s\n", ColorBlue, ColorReset)

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("%s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}

	fmt.Printf("%s[OK]%s Configuration parsed.\n\n", ColorGreen, ColorReset)
	fmt.Printf("Poll interval:   %s\n", cfg.PollInterval)
	fmt.Printf("Status port:     %d\n", cfg.StatusPort)
	if len(cfg.StatusChannels) > 0 {
		fmt.Printf("Roster channels: %s\n", strings.Join(cfg.StatusChannels, ", "))
	} else {
		fmt.Println("Roster channels: (none, channel reconciliation disabled)")
	}

	fmt.Printf("\nServers (%d):\n", len(cfg.Servers))
	for i, s := range cfg.Servers {
		fmt.Printf("  %d. %s:%d (token %s...)\n", i+1, s.Host, s.Port, truncateToken(s.Token))
	}

	fmt.Printf("\n%s✅ Configuration looks usable.%s\n", ColorGreen, ColorReset)
}

func truncateToken(token string) string {
	if len(token) <= 6 {
		return "******"
	}
	return token[:6]
}
