package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Chain detection", func(t *testing.T) {
		inner := NotFoundError("post not found").WithContext("slug", "hello").Build()
		wrapped := fmt.Errorf("render page: %w", inner)

		if !HasCategory(wrapped, CategoryNotFound) {
			t.Error("expected wrapped error to keep not_found category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected plain error to default to internal")
		}
	})

	t.Run("Permanent vs transient", func(t *testing.T) {
		if !IsPermanent(ValidationError("bad request").Build()) {
			t.Error("validation errors must be permanent")
		}
		if IsPermanent(NotionError("bad gateway").Build()) {
			t.Error("notion errors default to retryable")
		}
		if IsPermanent(errors.New("plain")) {
			t.Error("unclassified errors are treated as transient")
		}
		if !IsPermanent(AuthError("unauthorized").Build()) {
			t.Error("auth errors require user action")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, CategoryNetwork, "network failure").
		Warning().
		Retryable().
		WithContext("host", "api.notion.com").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if err.RetryStrategy() != RetryBackoff {
		t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}

	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryNever},
		{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryNever},
		{"AuthError", AuthError("test"), CategoryAuth, SeverityError, RetryUserAction},
		{"NotFoundError", NotFoundError("test"), CategoryNotFound, SeverityError, RetryNever},
		{"NetworkError", NetworkError("test"), CategoryNetwork, SeverityError, RetryBackoff},
		{"NotionError", NotionError("test"), CategoryNotion, SeverityError, RetryBackoff},
		{"RenderError", RenderError("test"), CategoryRender, SeverityFatal, RetryNever},
		{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError, RetryBackoff},
		{"LockError", LockError("test"), CategoryLock, SeverityError, RetryNever},
		{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			if err.Category() != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category())
			}
			if err.Severity() != tt.severity {
				t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
			}
			if err.RetryStrategy() != tt.retry {
				t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
			}
		})
	}
}

func TestSentinelIs(t *testing.T) {
	sentinel := LockError("queue full").Build()
	got := LockError("queue full").WithContext("domain", "posts").Build()
	if !errors.Is(fmt.Errorf("acquire: %w", got), sentinel) {
		t.Error("expected errors.Is to match by category and message")
	}
}

func TestErrorContextMerge(t *testing.T) {
	ctx1 := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
	ctx2 := ErrorContext{}.Set("key2", "value2").Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)
	if v, _ := merged.GetString("shared"); v != "overridden" {
		t.Errorf("expected shared=overridden, got %s", v)
	}
	if v, _ := merged.GetString("key1"); v != "value1" {
		t.Errorf("expected key1=value1, got %s", v)
	}
}
