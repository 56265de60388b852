package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/craftwatch/mcstatusbot/bot"
	"github.com/craftwatch/mcstatusbot/config"
	"github.com/craftwatch/mcstatusbot/mcquery"
	"github.com/craftwatch/mcstatusbot/orchestrator"
	"github.com/craftwatch/mcstatusbot/presence"
	"github.com/craftwatch/mcstatusbot/roster"
	"github.com/craftwatch/mcstatusbot/services"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	// 2. Build the shared reconciliation components
	poller := mcquery.NewPoller(mcquery.NewMCQuerier())
	presenceReconciler := presence.NewReconciler(presence.NewAvatarLimiter(presence.DefaultCooldown))
	rosterReconciler := roster.NewReconciler(cfg.StatusChannels)

	// 3. Create one pipeline per configured server/bot pair
	pipelines := make([]orchestrator.Pipeline, 0, len(cfg.Servers))
	for _, entry := range cfg.Servers {
		b := bot.New(bot.Config{
			Token: entry.Token,
			Host:  entry.Host,
			Port:  entry.Port,
		}, poller, presenceReconciler, rosterReconciler)
		pipelines = append(pipelines, b)
	}

	// 4. Start the orchestrator and the status server
	orch := orchestrator.New(pipelines, cfg.PollInterval)
	services.NewStatusServer(cfg.StatusPort, orch).Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(ctx)

	// 5. Wait for shutdown signal
	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Cleanly close down
	orch.Stop()
	fmt.Println("\nBot shutting down.")
}
