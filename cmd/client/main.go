package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	goredis "github.com/redis/go-redis/v9"

	"github.com/erain9/depthbook/pkg/marketdata"
	mdredis "github.com/erain9/depthbook/pkg/marketdata/redis"
)

var (
	redisAddr = flag.String("redis", "localhost:6379", "Redis address")
	prefix    = flag.String("prefix", "depthbook", "Redis key prefix")
	bookName  = flag.String("book", "BTC-USDT", "Book to display")
	watch     = flag.Bool("watch", false, "Subscribe and re-render on every update")
)

func main() {
	flag.Parse()

	client := goredis.NewClient(&goredis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := mdredis.NewRedisPublisher(client, *prefix)

	depth, ok, err := publisher.FetchDepth(ctx, *bookName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "No depth published yet for %s\n", *bookName)
		os.Exit(1)
	}
	render(depth)

	if !*watch {
		return
	}

	sub := client.Subscribe(ctx, publisher.DepthChannel(*bookName))
	defer sub.Close()

	for msg := range sub.Channel() {
		var update marketdata.DepthMessage
		if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
			fmt.Fprintf(os.Stderr, "Bad update: %v\n", err)
			continue
		}
		render(&update)
	}
}

// render prints the ladder asks-first so the spread sits in the middle,
// the way trading UIs draw it.
func render(depth *marketdata.DepthMessage) {
	header := color.New(color.Bold)
	askColor := color.New(color.FgRed)
	bidColor := color.New(color.FgGreen)

	header.Printf("\n%s  seq=%d  %s\n", depth.Book, depth.Sequence,
		time.Unix(0, depth.Timestamp).Format(time.RFC3339))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "side\tprice\tsize\torders\t")

	for i := len(depth.Asks) - 1; i >= 0; i-- {
		lvl := depth.Asks[i]
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t\n", askColor.Sprint("ask"), lvl.Price, lvl.Size, lvl.Orders)
	}
	for _, lvl := range depth.Bids {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t\n", bidColor.Sprint("bid"), lvl.Price, lvl.Size, lvl.Orders)
	}
	w.Flush()
}
