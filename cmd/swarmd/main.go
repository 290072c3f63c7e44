// Command swarmd is a minimal demo driver: it wires one agent with the
// echo/storage/fetch builtin skills, runs one turn against it, and
// prints the reply — grounded on the original Rust examples/chat.rs
// and src/main.rs, generalized to this module's swarm/flow machinery.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pixelswarm/swarm/agent"
	"github.com/pixelswarm/swarm/eventbus"
	"github.com/pixelswarm/swarm/flow"
	"github.com/pixelswarm/swarm/message"
	"github.com/pixelswarm/swarm/provider"
	"github.com/pixelswarm/swarm/skill"
	"github.com/pixelswarm/swarm/skill/builtin"
	"github.com/pixelswarm/swarm/swarm"
	"github.com/pixelswarm/swarm/swarmobs"
)

func main() {
	dialect := flag.String("dialect", "anthropic", "provider dialect: anthropic | openai-compat")
	baseURL := flag.String("base-url", "", "base URL for openai-compat dialect")
	prompt := flag.String("prompt", "introduce yourself in one sentence", "the message to send the demo agent")
	flag.Parse()

	if err := run(*dialect, *baseURL, *prompt); err != nil {
		log.Fatal(err)
	}
}

func run(dialect, baseURL, prompt string) error {
	client, err := newClient(dialect, baseURL)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	obs := swarmobs.NewLoggerObserver(os.Stderr)

	monitor := flow.NewMonitor(bus, flow.DefaultConfig(), obs)
	heartbeat := flow.NewHeartbeat(bus, 30*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Run(ctx)
	go heartbeat.Run(ctx)

	store := builtin.NewMemStore()
	registry := skill.NewRegistry()
	if err := registry.Register(builtin.Echo{}); err != nil {
		return err
	}
	if err := registry.Register(builtin.NewFetch()); err != nil {
		return err
	}
	if err := registry.Register(builtin.StorageGet{Store: store}); err != nil {
		return err
	}
	if err := registry.Register(builtin.StorageSet{Store: store}); err != nil {
		return err
	}

	config := message.NewAgentConfig("demo", "You are a concise assistant.")
	a := agent.New(config, client, registry, bus, obs)
	monitor.RegisterAgent(a.ID())

	swarmRegistry := swarm.New()
	swarmRegistry.Add(a)
	coordinator := swarm.NewCoordinator(swarmRegistry, bus)

	if err := a.Start(); err != nil {
		return err
	}

	reply, err := coordinator.Route(ctx, a.ID(), message.UserMessage(prompt))
	if err != nil {
		return err
	}
	fmt.Println("Assistant:", reply.Text())

	if snapshot, ok := monitor.DebugSnapshot(a.ID()); ok {
		fmt.Fprintln(os.Stderr, snapshot)
	}

	return a.Stop()
}

func newClient(dialect, baseURL string) (provider.Client, error) {
	switch dialect {
	case "anthropic":
		return provider.NewAnthropicFromEnv()
	case "openai-compat":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		if baseURL == "" {
			return nil, fmt.Errorf("-base-url is required for openai-compat")
		}
		return provider.NewOpenAICompat(baseURL, key), nil
	default:
		return nil, provider.UnsupportedProviderError(dialect)
	}
}
