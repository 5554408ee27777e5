package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/streetmarket/market/agent"
	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/health"
)

func main() {
	brokerFlag := flag.String("broker", defaultBrokers(), "comma-separated Kafka broker addresses")
	idFlag := flag.String("id", defaultAgentID(), "agent id")
	healthAddrFlag := flag.String("health-addr", defaultHealthAddr(), "health check listen address")
	flag.Parse()

	brokers := strings.Split(*brokerFlag, ",")
	agentID := *idFlag

	log.Printf("[%s] starting, brokers=%v", agentID, brokers)

	healthSrv := health.NewServer(agentID)
	healthSrv.Start(*healthAddrFlag)

	b := bus.NewKafkaBus(agentID, brokers)
	runtime := agent.NewRuntime(b, agent.Identity{
		AgentID:     agentID,
		Name:        "Farmer",
		Description: "Gathers potato and onion and sells the surplus.",
	}, decide)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runtime.Start(ctx); err != nil {
		log.Fatalf("[%s] start failed: %v", agentID, err)
	}
	healthSrv.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("[%s] shutting down", agentID)
	cancel()
	if err := b.Close(); err != nil {
		log.Printf("[%s] close error: %v", agentID, err)
	}
}

func defaultBrokers() string {
	if v := os.Getenv("STREETMARKET_KAFKA_BROKERS"); v != "" {
		return v
	}
	return "localhost:9092"
}

func defaultAgentID() string {
	if v := os.Getenv("STREETMARKET_AGENT_ID"); v != "" {
		return v
	}
	return "farmer-01"
}

func defaultHealthAddr() string {
	if v := os.Getenv("STREETMARKET_HEALTH_ADDR"); v != "" {
		return v
	}
	return ":8084"
}
