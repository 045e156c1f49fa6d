// Package export turns a generation result into downloadable files.
//
// Build splits the content into one text file in the requested format and
// one PNG per inline image. Only paid tiers may export. Artifacts are then
// handed to a Store: InlineStore returns them base64 encoded in the
// response, S3Store uploads them under exports/<session>/.
package export
