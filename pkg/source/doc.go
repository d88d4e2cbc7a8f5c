// Package source loads dependency graph snapshots.
//
// A snapshot comes from the analyzer service ([DefaultEndpoint]) or from a
// JSON file in the same shape. Fetched snapshots are validated before they
// are returned, so a graph with dangling edge endpoints never reaches a
// layout run.
//
// # Usage
//
//	client, err := source.New(
//	    source.WithCache(backend, nil, cache.TTLGraph),
//	    source.WithLogger(logger),
//	)
//	g, err := client.Fetch(ctx, false)
//
// [Load] accepts either an http(s) URL or a file path, which is what the
// CLI's --input flag takes.
package source
