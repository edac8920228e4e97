package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/nikolaydubina/fpdecimal"
	"golang.org/x/time/rate"

	"github.com/erain9/depthbook/pkg/book"
)

var (
	numOps     = flag.Int("ops", 1_000_000, "Total operations to apply")
	maxRate    = flag.Int("rate", 0, "Operations per second, 0 for unthrottled")
	priceBand  = flag.Int("price-band", 200, "Number of distinct price ticks per side")
	cancelRate = flag.Float64("cancel-rate", 0.4, "Fraction of operations that cancel")
	resizeRate = flag.Float64("resize-rate", 0.2, "Fraction of operations that resize")
	seed       = flag.Int64("seed", 0, "Random seed, 0 for time-based")
)

func main() {
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(*seed))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, stopping...")
		cancel()
	}()

	var limiter *rate.Limiter
	if *maxRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(*maxRate), *maxRate)
	}

	// One histogram per operation kind, 1us..10s range.
	histograms := map[string]*hdrhistogram.Histogram{
		"add":    hdrhistogram.New(1, 10_000_000_000, 3),
		"cancel": hdrhistogram.New(1, 10_000_000_000, 3),
		"resize": hdrhistogram.New(1, 10_000_000_000, 3),
	}

	b := book.NewBook()
	resting := make([]uint64, 0, *numOps)
	nextID := uint64(1)

	log.Printf("Applying %d operations (seed %d)...", *numOps, *seed)
	start := time.Now()
	applied := 0

	for applied < *numOps && ctx.Err() == nil {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		roll := r.Float64()
		switch {
		case roll < *cancelRate && len(resting) > 0:
			i := r.Intn(len(resting))
			id := resting[i]
			t0 := time.Now()
			b.Remove(id)
			histograms["cancel"].RecordValue(time.Since(t0).Nanoseconds())
			resting[i] = resting[len(resting)-1]
			resting = resting[:len(resting)-1]

		case roll < *cancelRate+*resizeRate && len(resting) > 0:
			id := resting[r.Intn(len(resting))]
			t0 := time.Now()
			_, _, err := b.UpdateSize(id, int64(r.Intn(1000)+1))
			histograms["resize"].RecordValue(time.Since(t0).Nanoseconds())
			if err != nil {
				log.Fatalf("resize failed: %v", err)
			}

		default:
			order := randomOrder(r, nextID, *priceBand)
			t0 := time.Now()
			err := b.Add(order)
			histograms["add"].RecordValue(time.Since(t0).Nanoseconds())
			if err != nil {
				log.Fatalf("add failed: %v", err)
			}
			resting = append(resting, nextID)
			nextID++
		}
		applied++
	}

	duration := time.Since(start)
	log.Printf("Done: %d ops in %v (%.0f ops/s)", applied, duration,
		float64(applied)/duration.Seconds())
	log.Printf("Resting orders: %d, bid levels: %d, ask levels: %d",
		b.Len(), mustLevels(b, book.Buy), mustLevels(b, book.Sell))

	for _, name := range []string{"add", "cancel", "resize"} {
		printHistogram(name, histograms[name])
	}
}

func randomOrder(r *rand.Rand, id uint64, band int) book.Order {
	side := book.Buy
	base := 10_000 - r.Intn(band) // bids below 100.00
	if r.Float64() < 0.5 {
		side = book.Sell
		base = 10_001 + r.Intn(band) // asks above
	}
	price := fpdecimal.FromFloat(float64(base) / 100)

	order, err := book.NewOrder(id, side, price, int64(r.Intn(1000)+1))
	if err != nil {
		log.Fatalf("bad generated order: %v", err)
	}
	return order
}

func mustLevels(b *book.Book, side book.Side) int {
	n, err := b.Levels(side)
	if err != nil {
		log.Fatalf("levels failed: %v", err)
	}
	return n
}

func printHistogram(name string, h *hdrhistogram.Histogram) {
	if h.TotalCount() == 0 {
		return
	}
	fmt.Printf("%-7s count=%-9d p50=%-8s p99=%-8s p99.9=%-8s max=%s\n",
		name,
		h.TotalCount(),
		time.Duration(h.ValueAtQuantile(50)),
		time.Duration(h.ValueAtQuantile(99)),
		time.Duration(h.ValueAtQuantile(99.9)),
		time.Duration(h.Max()),
	)
}
