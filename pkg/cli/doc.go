// Package cli provides the langreg command-line interface.
//
// # Overview
//
// This package implements the `langreg` tool. It reads language declaration
// descriptors, validates every registered language and writes the registry
// artifact META-INF/truffle/language once all rounds are done.
//
// # Commands
//
// generate: Present each path as one round, then write the artifact
//
//	langreg generate \
//		-out ./build/classes \
//		./descriptors/core ./descriptors/tools
//
// Print the artifact instead of writing it:
//
//	langreg generate -dry-run ./descriptors
//
// watch: Present every debounced batch of descriptor changes as a round.
// SIGINT or SIGTERM writes the artifact and exits.
//
//	langreg watch -metrics-addr :9090 ./descriptors
//
// inspect: Print the registrations of a generated artifact
//
//	langreg inspect -json ./build/classes/META-INF/truffle/language
//
// # Configuration
//
// Settings are read from the file passed with -config, then from LANGREG_*
// environment variables, then from flags. Later sources win:
//
//	export LANGREG_SINK=s3
//	export LANGREG_S3_BUCKET=build-artifacts
//	export LANGREG_CLAIMS_BACKEND=redis
//	export LANGREG_REDIS_URL=redis://localhost:6379/0
//
// Writers sharing a -run-id and the redis claims backend write the artifact
// once between them; the others finish silently.
//
// # Exit Codes
//
// generate and watch exit with 1 when any error diagnostic was reported.
package cli
