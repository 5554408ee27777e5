// Command smoketest is a standalone proof-of-life demo: it runs the
// offer/bid/accept scenario against a real broker (or an in-memory bus
// with -memory) and reports whether all three messages round-tripped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/streetmarket/market/internal/bus"
	"github.com/streetmarket/market/internal/smoketest"
)

func main() {
	brokerFlag := flag.String("broker", defaultBrokers(), "comma-separated Kafka broker addresses")
	memoryFlag := flag.Bool("memory", false, "use an in-memory bus instead of connecting to Kafka")
	flag.Parse()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("  AI STREET MARKET -- Proof of Life")
	fmt.Println(strings.Repeat("=", 60))

	var b bus.Bus
	if *memoryFlag {
		b = bus.NewMemoryBus()
	} else {
		brokers := strings.Split(*brokerFlag, ",")
		b = bus.NewKafkaBus("smoketest", brokers)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := smoketest.Run(ctx, b, 5*time.Second)
	if err != nil {
		log.Fatalf("smoke test failed: %v", err)
	}
	if err := b.Close(); err != nil {
		log.Printf("close error: %v", err)
	}

	fmt.Printf("\nSUCCESS! Received %d messages on the bus. The market is alive!\n", len(result.Received))
	os.Exit(0)
}

func defaultBrokers() string {
	if v := os.Getenv("STREETMARKET_KAFKA_BROKERS"); v != "" {
		return v
	}
	return "localhost:9092"
}
