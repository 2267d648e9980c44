// Package reports renders user activity reports and publishes them as
// downloadable artifacts.
//
// An Exporter runs the same user activity query the statistics API serves,
// renders it as a standalone HTML page, uploads the page through a
// storage.ArtifactStore and remembers its URL in a storage.ReportRecordStore.
// The latest URL per user backs the download endpoint.
package reports
