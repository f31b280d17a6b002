// Package config loads langreg configuration from an optional YAML file and
// LANGREG_* environment variables.
//
// Values are resolved in order: defaults, then the YAML file, then the
// environment. The result is validated before it is returned.
//
//	processor:
//	  base_type: com.oracle.truffle.api.TruffleLanguage
//	output:
//	  sink: s3
//	  s3_bucket: build-artifacts
//	  s3_prefix: langreg
//	claims:
//	  backend: redis
//	  redis_url: redis://localhost:6379/0
//
// Environment overrides:
//
//	LANGREG_BASE_TYPE, LANGREG_SINK, LANGREG_OUTPUT_DIR
//	LANGREG_S3_BUCKET, LANGREG_S3_PREFIX, LANGREG_S3_REGION, LANGREG_S3_ENDPOINT
//	LANGREG_CLAIMS_BACKEND, LANGREG_RUN_ID, LANGREG_REDIS_URL, LANGREG_CLAIMS_TTL
//	LANGREG_WATCH_DEBOUNCE, LANGREG_METRICS_ADDR
//	LANGREG_LOG_LEVEL, LANGREG_LOG_FORMAT
//	LANGREG_OTEL_ENABLED, LANGREG_OTEL_ENDPOINT, LANGREG_OTEL_SAMPLE_RATIO
package config
