// Package driver exports a review graph into Neo4j.
//
// Brand and Review nodes are MERGEd on their id, so repeated exports do not
// duplicate nodes. REVIEWED_IN relationships are CREATEd, one per fact, with
// the fact's seq, topic, sentiment and validity interval as properties.
// Export clears previously exported nodes first unless told otherwise.
//
// # Usage
//
//	exp, err := driver.NewNeo4jExporter(cfg.Neo4j, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer exp.Close(ctx)
//
//	res, err := exp.Export(ctx, g, nil)
package driver
