package errors

// ErrorBuilder assembles a ClassifiedError step by step.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// NewError starts a builder with error severity and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError starts a builder around an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.retry = strategy
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// ForTopic records the catalog topic the failure belongs to.
func (b *ErrorBuilder) ForTopic(name string) *ErrorBuilder {
	return b.WithContext(ContextTopic, name)
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Retryable marks the failure as transient for retry.Policy.
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }

// UserAction marks the failure as needing a config or credential fix.
func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// Build returns the ClassifiedError. The builder must not be reused.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		retry:    b.retry,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// categoryDefaults holds the severity and retry hint the named constructors
// start from. Categories not listed use NewError's defaults.
var categoryDefaults = map[ErrorCategory]struct {
	severity ErrorSeverity
	retry    RetryStrategy
}{
	CategoryConfig:     {SeverityFatal, RetryNever},
	CategoryValidation: {SeverityFatal, RetryNever},
	CategoryAuth:       {SeverityError, RetryUserAction},
	CategoryNetwork:    {SeverityError, RetryBackoff},
	CategoryInternal:   {SeverityFatal, RetryNever},
}

func fromDefaults(category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	if d, ok := categoryDefaults[category]; ok {
		b.severity, b.retry = d.severity, d.retry
	}
	return b
}

func ConfigError(message string) *ErrorBuilder     { return fromDefaults(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return fromDefaults(CategoryValidation, message) }
func NotFoundError(message string) *ErrorBuilder   { return fromDefaults(CategoryNotFound, message) }
func AuthError(message string) *ErrorBuilder       { return fromDefaults(CategoryAuth, message) }

// NetworkError is retryable with backoff.
func NetworkError(message string) *ErrorBuilder { return fromDefaults(CategoryNetwork, message) }

// LLMError is not retryable unless the caller adds Retryable, as the client
// does for 429 and 5xx replies.
func LLMError(message string) *ErrorBuilder { return fromDefaults(CategoryLLM, message) }

func StoreError(message string) *ErrorBuilder      { return fromDefaults(CategoryStore, message) }
func FileSystemError(message string) *ErrorBuilder { return fromDefaults(CategoryFileSystem, message) }

// RenderError is a serializer failure for one output format.
func RenderError(message string) *ErrorBuilder { return fromDefaults(CategoryRender, message) }

func InternalError(message string) *ErrorBuilder { return fromDefaults(CategoryInternal, message) }
