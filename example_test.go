package rangego_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hupe1980/rangego"
	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/model"
)

// Example demonstrates the basic add, commit, search cycle.
func Example() {
	ctx := context.Background()
	eng, err := rangego.Open(ctx, blobstore.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	prices := []int64{499, 1299, 1899, 3499}
	for _, p := range prices {
		if _, err := eng.AddDocument(ctx, model.NewDocument().WithNumeric("price", p).Build()); err != nil {
			log.Fatal(err)
		}
	}
	if err := eng.Commit(ctx); err != nil {
		log.Fatal(err)
	}

	matches, err := eng.Search("price").Between(1000, 2000).Execute(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range matches {
		fmt.Printf("doc %d matched\n", m.DocID)
	}
	// Output:
	// doc 1 matched
	// doc 2 matched
}

// Example_openLocal demonstrates a durable index in a local directory.
func Example_openLocal() {
	dataPath := "./example_index"
	defer os.RemoveAll(dataPath)

	ctx := context.Background()
	eng, err := rangego.OpenLocal(ctx, dataPath)
	if err != nil {
		log.Fatal(err)
	}

	_, err = eng.AddDocument(ctx, model.NewDocument().WithNumeric("size_bytes", 4096).Build())
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Commit(ctx); err != nil {
		log.Fatal(err)
	}
	if err := eng.Close(); err != nil {
		log.Fatal(err)
	}

	// Reopen: the committed generation is what we find.
	eng, err = rangego.OpenLocal(ctx, dataPath)
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	n, err := eng.Search("size_bytes").Min(1024).Count(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("generation %d, %d match(es)\n", eng.Stats().Generation, n)
	// Output: generation 1, 1 match(es)
}

// Example_multiValued demonstrates searching fields holding several
// values per document.
func Example_multiValued() {
	ctx := context.Background()
	eng, err := rangego.Open(ctx, blobstore.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	// Sensor readings: a document matches when any reading is in range.
	eng.AddDocument(ctx, model.NewDocument().WithNumeric("readings", 7, -3, 5).Build())
	eng.AddDocument(ctx, model.NewDocument().WithNumeric("readings", 100).Build())
	if err := eng.Commit(ctx); err != nil {
		log.Fatal(err)
	}

	n, err := eng.Search("readings").MultiValued().Between(0, 5).Count(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d document(s) with a reading in [0, 5]\n", n)
	// Output: 1 document(s) with a reading in [0, 5]
}

// Example_termFilter demonstrates intersecting a range with a term.
func Example_termFilter() {
	ctx := context.Background()
	eng, err := rangego.Open(ctx, blobstore.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	add := func(latency int64, region string) {
		doc := model.NewDocument().
			WithNumeric("latency_ms", latency).
			WithTerm("region", region).
			Build()
		if _, err := eng.AddDocument(ctx, doc); err != nil {
			log.Fatal(err)
		}
	}
	add(120, "eu-west-1")
	add(480, "eu-west-1")
	add(95, "us-east-1")
	if err := eng.Commit(ctx); err != nil {
		log.Fatal(err)
	}

	n, err := eng.Search("latency_ms").
		Max(250).
		FilterTerm("region", "eu-west-1").
		Count(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d slow-region document(s)\n", n)
	// Output: 1 slow-region document(s)
}

// Example_stream demonstrates streaming matches with early termination.
func Example_stream() {
	ctx := context.Background()
	eng, err := rangego.Open(ctx, blobstore.NewMemoryStore())
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	for v := int64(0); v < 100; v++ {
		eng.AddDocument(ctx, model.NewDocument().WithNumeric("v", v).Build())
	}
	if err := eng.Commit(ctx); err != nil {
		log.Fatal(err)
	}

	count := 0
	for _, err := range eng.Search("v").Min(10).Stream(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		count++
		if count == 5 {
			break
		}
	}
	fmt.Printf("Stopped after %d matches\n", count)
	// Output: Stopped after 5 matches
}
