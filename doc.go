// Package reviewgraph builds a temporal knowledge graph of brands and the
// reviews written about them, and answers "what was said about this brand as
// of this date" queries.
//
// # Basic Usage
//
// Construct the model handles once and hand them to a Pipeline:
//
//	rec := rustbert.NewClient(rustbert.Config{NERModelID: "dslim/bert-base-NER"})
//	if err := rec.LoadNERModel(); err != nil {
//		log.Fatal(err)
//	}
//	defer rec.Close()
//
//	gl, err := gliner2.NewHTTPClient(gliner2.Config{
//		Provider: gliner2.ProviderLocal,
//		Local:    &gliner2.LocalConfig{Endpoint: "http://localhost:8000"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g := graph.New()
//	p := reviewgraph.NewPipeline(g,
//		extract.New(rec, nil),
//		classify.NewTopicClassifier(classify.NewGLiNER2Backend(gl, 0), 0),
//		sentiment.NewScorer(nil),
//		nil, logger)
//
//	results, err := p.IngestDirectory(ctx, "data/")
//
// # Ingestion
//
// Each input file is read in order. A record's summary and body are joined,
// the first organization entity becomes its brand, and accepted records are
// buffered into batches. A batch is topic-classified in one call; sentiment
// comes from the star rating when decisive and from VADER otherwise. Each
// accepted record becomes one REVIEWED_IN edge from its Brand node to its
// Review node, starting at the review timestamp (or DefaultDate).
//
// A classifier failure drops its whole batch. Records without usable text or
// without a brand are dropped silently.
//
// # Querying
//
// QuerySnapshot returns the edges active on a date, optionally filtered by a
// brand substring, rendered one line per fact:
//
//	- Review: 'Screen cracked fast' (Topic: Quality, Sentiment: Negative)
//
// At most the last 50 matching facts are returned. When nothing matches, the
// text is graph.NoDataSentinel.
//
// # Architecture
//
//   - pkg/source: CSV, TSV and JSON lines readers
//   - pkg/extract, pkg/rustbert, pkg/gliner, pkg/gliner2: brand extraction
//   - pkg/classify, pkg/nlp: zero-shot topic classification
//   - pkg/sentiment: rating plus VADER sentiment
//   - pkg/graph: the in-memory temporal graph
//   - pkg/persistence: JSON file, badger and parquet storage
//   - pkg/driver: Neo4j export
//   - pkg/server: read-only HTTP API
//   - pkg/alert: SMTP alerts for tripped breakers and failed runs
//   - cmd/reviewgraph: the ingest, snapshot, brands, stats, serve and export commands
package reviewgraph
