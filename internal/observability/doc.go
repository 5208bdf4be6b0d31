// Package observability provides structured logging for the coffee shop API.
//
// This package implements:
//   - zap logger construction from configuration
//   - Request ID propagation through context.Context
package observability
