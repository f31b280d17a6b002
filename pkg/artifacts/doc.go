/*
Package artifacts provides the sinks the registration processor writes its
artifact through.

A sink opens a path for writing and commits the content when the writer is
closed:

  - FilesystemSink writes below an output root through a temporary file that is
    renamed into place on Close
  - S3Sink buffers the content and uploads it with PutObject on Close
  - MemorySink keeps committed content in memory

ClaimedSink wraps any sink with a run-scoped claim store so that the second
attempt to create the same path in one run fails with
registration.ErrAlreadyCreated. MemoryClaims serves a single process,
RedisClaims coordinates several processes sharing a run ID.

	claims, err := artifacts.NewRedisClaims(artifacts.RedisConfig{URL: "redis://localhost:6379/0"})
	if err != nil {
		return err
	}
	sink := artifacts.NewClaimedSink(artifacts.NewFilesystemSink("build/classes"), claims, run.ID)
*/
package artifacts
