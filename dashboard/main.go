package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/streetmarket/market/internal/bus"
)

func main() {
	brokerFlag := flag.String("broker", defaultBrokers(), "comma-separated Kafka broker addresses")
	addrFlag := flag.String("addr", defaultAddr(), "HTTP listen address")
	flag.Parse()

	brokers := strings.Split(*brokerFlag, ",")

	log.Printf("[dashboard] starting, brokers=%v addr=%s", brokers, *addrFlag)

	b := bus.NewKafkaBus("dashboard", brokers)
	srv := newServer()
	go srv.hub.run()

	obs := newObserver(b, srv.hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := obs.start(ctx); err != nil {
		log.Fatalf("[dashboard] start failed: %v", err)
	}

	httpServer := &http.Server{Addr: *addrFlag, Handler: srv.routes()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[dashboard] http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("[dashboard] shutting down")
	cancel()
	httpServer.Close()
	if err := b.Close(); err != nil {
		log.Printf("[dashboard] close error: %v", err)
	}
}

func defaultBrokers() string {
	if v := os.Getenv("STREETMARKET_KAFKA_BROKERS"); v != "" {
		return v
	}
	return "localhost:9092"
}

func defaultAddr() string {
	if v := os.Getenv("STREETMARKET_DASHBOARD_ADDR"); v != "" {
		return v
	}
	return ":8090"
}
