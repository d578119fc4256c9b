// Package testutil generates deterministic corpora and computes exact
// reference matches, so tests and benchmarks can compare engine results
// against ground truth. Nothing outside tests should import it.
//
// # Deterministic Corpora
//
//	rng := testutil.NewRNG(42)
//	corpus := testutil.NewCorpus(10000).
//	    AddSingleNumeric("price", rng.UniformValues(10000, 0, 100000)).
//	    AddNumeric("readings", rng.MultiValues(10000, 4, -50, 50)).
//	    AddTerms("region", regions)
//
// # Ground Truth
//
//	expected := testutil.RangeMatches(corpus.Numerics["price"], 100, 2000)
//	filtered := testutil.Intersect(expected, testutil.TermMatches(corpus.Terms["region"], "eu"))
package testutil
