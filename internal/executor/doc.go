/*
Package executor handles HTTP request execution against the image service.

# Overview

The executor package provides:
  - Buffered requests (Execute) for JSON endpoints
  - Streamed downloads (Stream) for images and archives
  - HTTP client construction with optional TLS/mTLS and timeout

# Errors

Transport failures (no response received) are returned as errors and leave
the result nil. A response whose body could not be read is returned as a
result with Error set, so the caller still sees the status code.

# TLS Configuration

TLS support includes:
  - Custom CA certificates
  - Client certificates (mTLS)
  - InsecureSkipVerify for development

# Example Usage

	client, err := executor.NewHTTPClient(nil, 0)
	if err != nil {
		return err
	}

	result, err := executor.Execute(ctx, client, &types.HttpRequest{
		Method: "GET",
		URL:    "http://localhost:5000/generate/stats",
	})
	if err != nil {
		return err
	}

	fmt.Printf("Status: %d\n", result.Status)

# Thread Safety

Execute and Stream are safe to call concurrently with a shared client.
*/
package executor
