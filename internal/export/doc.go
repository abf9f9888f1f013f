// Package export publishes finished videos to S3 when export.s3_bucket is set.
package export
