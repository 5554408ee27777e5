// Command world runs the simulation tick clock and the first-come,
// first-served gather protocol over the market bus.
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

	log.Printf("[world] starting, brokers=%v", brokers)

	healthSrv := health.NewServer("world")
	healthSrv.Start(*healthAddrFlag)

	b := bus.NewKafkaBus("world", brokers)
	engine := NewEngine(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		log.Fatalf("[world] start failed: %v", err)
	}
	healthSrv.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("[world] shutting down")
	cancel()
	if err := b.Close(); err != nil {
		log.Printf("[world] close error: %v", err)
	}
}

func defaultBrokers() string {
	if v := os.Getenv("STREETMARKET_KAFKA_BROKERS"); v != "" {
		return v
	}
	return "localhost:9092"
}

func defaultHealthAddr() string {
	if v := os.Getenv("STREETMARKET_WORLD_HEALTH_ADDR"); v != "" {
		return v
	}
	return ":8081"
}
