// Package backend opens the storage backends selected by storage.Config.
//
// Both binaries share it so the API server and the exporter always read the
// same record store and write artifacts to the same place:
//
//	backends, err := backend.Open(ctx, cfg.Storage, backend.Options{SeedDemo: true}, logger)
//	if err != nil {
//		return err
//	}
//	defer backends.Close()
//
//	service := analytics.NewService(backends.Records, analytics.AggregatorConfig{})
//	exporter := reports.NewExporter(service, backends.Artifacts, backends.Reports, logger)
//
// The memory store is used when Type is empty or "memory". With "postgres" the
// schema is created on open and unhealthy replicas are pruned in the
// background until Close. A configured Redis URL is required to be reachable
// and becomes the shared second level of the lookup cache.
//
// RegisterHealthChecks adds the record store as a critical readiness check and
// Redis and S3 as optional ones.
package backend
