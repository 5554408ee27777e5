// Command governor runs the admission-control gate: structural and
// business-rule validation, rate limiting, liveness tracking, and the
// crafting state machine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/health"
)

func main() {
	brokerFlag := flag.String("broker", defaultBrokers(), "comma-separated Kafka broker addresses")
	healthAddrFlag := flag.String("health-addr", defaultHealthAddr(), "health check listen address")
	flag.Parse()

	brokers := strings.Split(*brokerFlag, ",")
	log.Printf("[governor] starting, brokers=%v", brokers)

	healthSrv := health.NewServer("governor")
	healthSrv.Start(*healthAddrFlag)

	b := bus.NewKafkaBus("governor", brokers)
	gov := NewGovernor(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := gov.Start(ctx); err != nil {
		log.Fatalf("[governor] start failed: %v", err)
	}
	healthSrv.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("[governor] shutting down")
	cancel()
	if err := b.Close(); err != nil {
		log.Printf("[governor] close error: %v", err)
	}
}

func defaultBrokers() string {
	if v := os.Getenv("STREETMARKET_KAFKA_BROKERS"); v != "" {
		return v
	}
	return "localhost:9092"
}

func defaultHealthAddr() string {
	if v := os.Getenv("STREETMARKET_GOVERNOR_HEALTH_ADDR"); v != "" {
		return v
	}
	return ":8082"
}
