// Package export publishes statically rendered markup.
//
// DiskExporter writes files below a directory, S3Exporter uploads objects to
// a bucket. Both return errors coded E180; ParseTarget returns E140 for an
// output target it cannot interpret.
package export
