package main

import (
	"fmt"

	"github.com/nikolaydubina/fpdecimal"

	"github.com/erain9/depthbook/pkg/book"
)

func main() {
	b := book.NewBook()

	// Build one side at a time: two bids sharing a level, one deeper bid,
	// and a pair of asks.
	orders := []struct {
		id    uint64
		side  book.Side
		price float64
		size  int64
	}{
		{1, book.Buy, 60.6, 600},
		{2, book.Buy, 60.6, 400},
		{3, book.Buy, 50.6, 200},
		{4, book.Sell, 61.0, 150},
		{5, book.Sell, 61.5, 300},
	}

	for _, o := range orders {
		order, err := book.NewOrder(o.id, o.side, fpdecimal.FromFloat(o.price), o.size)
		if err != nil {
			panic(err)
		}
		if err := b.Add(order); err != nil {
			panic(err)
		}
	}

	fmt.Println("Book after five adds:")
	fmt.Println(b)

	// Best bid aggregates both orders at 60.6.
	size, err := b.SizeAtLevel(book.Buy, 1)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Best bid size: %d\n", size)

	// Shrinking order 1 keeps its place at the front of the queue.
	prior, _, err := b.UpdateSize(1, 100)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Resized order %d from %d to 100\n", prior.ID(), prior.Size())

	// Cancelling the last bid at 50.6 compacts the level away.
	if removed, ok := b.Remove(3); ok {
		fmt.Printf("Cancelled order %d at %s\n", removed.ID(), removed.Price())
	}

	levels, err := b.Levels(book.Buy)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Bid levels remaining: %d\n", levels)

	fmt.Println("\nFinal book:")
	fmt.Println(b)
}
