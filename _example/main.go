package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/rangego"
	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/testutil"
)

func main() {
	seed := int64(4711)
	size := 500000
	flushEvery := 100000

	ctx := context.Background()

	eng, err := rangego.Open(ctx, blobstore.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	rng := testutil.NewRNG(seed)
	prices := rng.UniformValues(size, 0, 1_000_000)
	regions := []string{"us-east", "us-west", "eu-central", "ap-south"}

	fmt.Println("--- Index ---")
	fmt.Println("Docs:", size)
	fmt.Println("Segments:", size/flushEvery)

	start := time.Now()

	for i, price := range prices {
		doc := model.NewDocument().
			WithNumeric("price", price).
			WithTerm("region", regions[rng.Intn(len(regions))]).
			Build()
		if _, err := eng.AddDocument(ctx, doc); err != nil {
			log.Fatal(err)
		}
		if (i+1)%flushEvery == 0 {
			if err := eng.Flush(ctx); err != nil {
				log.Fatal(err)
			}
		}
	}
	if err := eng.Commit(ctx); err != nil {
		log.Fatal(err)
	}

	end := time.Since(start)

	fmt.Printf("Seconds: %.2f\n\n", end.Seconds())

	stats := eng.Stats()
	fmt.Printf("Index %s, generation %d, %d segments, %d docs\n\n",
		stats.IndexID, stats.Generation, stats.Segments, stats.Docs)

	fmt.Println("--- Range ---")

	start = time.Now()

	count, err := eng.Search("price").Between(250_000, 260_000).Count(ctx)
	if err != nil {
		log.Fatal(err)
	}

	end = time.Since(start)

	fmt.Printf("price in [250000, 260000]: %d docs\n", count)
	fmt.Printf("Seconds: %.8f\n\n", end.Seconds())

	fmt.Println("--- Range + Term ---")

	start = time.Now()

	matches, err := eng.Search("price").
		Between(250_000, 260_000).
		FilterTerm("region", "eu-central").
		Execute(ctx)
	if err != nil {
		log.Fatal(err)
	}

	end = time.Since(start)

	printResult(matches[:min(len(matches), 10)])

	fmt.Printf("Matches: %d\n", len(matches))
	fmt.Printf("Seconds: %.8f\n\n", end.Seconds())

	fmt.Println("--- Repeat (plan cache) ---")

	start = time.Now()

	count, err = eng.Search("price").Between(250_000, 260_000).Count(ctx)
	if err != nil {
		log.Fatal(err)
	}

	end = time.Since(start)

	fmt.Printf("price in [250000, 260000]: %d docs\n", count)
	fmt.Printf("Seconds: %.8f\n", end.Seconds())
	fmt.Printf("Plan cache: %d hits, %d misses\n", eng.Stats().PlanCacheHits, eng.Stats().PlanCacheMisses)
}

func printResult(matches []rangego.Match) {
	for _, m := range matches {
		fmt.Printf("Segment: %d, Doc: %d, Score: %.2f\n", m.SegmentID, m.DocID, m.Score)
	}
}
