// Command banker runs the economic authority: agent accounts, the order
// book, trade settlement, and crafting resource custody.
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
	log.Printf("[banker] starting, brokers=%v", brokers)

	healthSrv := health.NewServer("banker")
	healthSrv.Start(*healthAddrFlag)

	b := bus.NewKafkaBus("banker", brokers)
	bk := NewBanker(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bk.Start(ctx); err != nil {
		log.Fatalf("[banker] start failed: %v", err)
	}
	healthSrv.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("[banker] shutting down")
	cancel()
	if err := b.Close(); err != nil {
		log.Printf("[banker] close error: %v", err)
	}
}

func defaultBrokers() string {
	if v := os.Getenv("STREETMARKET_KAFKA_BROKERS"); v != "" {
		return v
	}
	return "localhost:9092"
}

func defaultHealthAddr() string {
	if v := os.Getenv("STREETMARKET_BANKER_HEALTH_ADDR"); v != "" {
		return v
	}
	return ":8083"
}
