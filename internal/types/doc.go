/*
Package types defines the data structures shared across text2image.

# Overview

The types package provides shared type definitions for:
  - Wire payloads of the image generation service
  - Raw HTTP requests and results used by the executor
  - TLS configuration
  - Statistics snapshots

# Wire Types

GenerateRequest / GenerateResponse:
  - Body of POST /generate and its reply
  - image_url is opaque and may be relative to the service base URL
  - error carries the server's failure text when present

HistoryRecord:
  - One element of GET /generate/history (newest first)

StatsSnapshot:
  - Reply of GET /generate/stats
  - Immutable once fetched

# Field Tags

Wire types carry JSON tags matching the service contract and YAML tags for
CLI output. Unknown fields in server replies are ignored.
*/
package types
