package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeOverWithdrawal, status: http.StatusUnprocessableEntity, publicMsg: "withdrawal exceeds available balance", detailsOK: true},
		{code: CodeInvalidTransition, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}

	formatted := Newf(CodeNotFound, "item %s not found", "X")
	if formatted.Message() != "item X not found" {
		t.Fatalf("unexpected formatted message %q", formatted.Message())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeInvalidTransition, "cannot approve")
	if got := As(err); got == nil || got.Code() != CodeInvalidTransition {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	inner := New(CodeInsufficientStock, "not enough")
	outer := fmt.Errorf("commit: %w", inner)
	if !IsCode(outer, CodeInsufficientStock) {
		t.Fatalf("expected wrapped code to be detected")
	}
	if IsCode(outer, CodeValidation) {
		t.Fatalf("unexpected code match")
	}
	if IsCode(nil, CodeValidation) {
		t.Fatalf("nil error should never match")
	}
}

func TestDumpIncludesChainAndDetails(t *testing.T) {
	cause := stdErrors.New("disk")
	err := Wrap(CodeDependency, cause, "load").WithDetails(map[string]any{"step": "seed"})
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	if dump.Details == nil {
		t.Fatalf("expected details to be carried")
	}
	if dump.HTTPStatus != 503 || !dump.Retryable {
		t.Fatalf("expected retryable 503 dump, got status=%d retryable=%v", dump.HTTPStatus, dump.Retryable)
	}
	if Dump(New(CodeValidation, "bad")).Retryable {
		t.Fatalf("validation errors are not retryable")
	}
	if got := Dump(nil); got.TopMessage != "" {
		t.Fatalf("expected empty dump for nil error")
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("withdraw: %w", New(CodeOverWithdrawal, "balance 120"))
	if !stdErrors.Is(err, New(CodeOverWithdrawal, "")) {
		t.Fatalf("expected code match regardless of message")
	}
	if stdErrors.Is(err, New(CodeNotFound, "balance 120")) {
		t.Fatalf("different code must not match")
	}
	if stdErrors.Is(err, stdErrors.New("balance 120")) {
		t.Fatalf("plain errors never match a typed error")
	}
}
