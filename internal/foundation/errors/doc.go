// Package errors provides the classified error primitives used across the
// report tool.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, llm, store, render, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: whether the retry policy may try again
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages
//
// Context keys (ContextTopic, ContextPath, ...) are shared so the CLI can name
// the topic a failure belongs to.
//
// Example usage:
//
//	err := errors.RenderError("docx serialization failed").
//		WithContext(errors.ContextFormat, "docx").
//		WithCause(originalErr).
//		Build()
package errors
