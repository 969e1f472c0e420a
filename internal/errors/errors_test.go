package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNotFound_BuildsExpectedMessage(t *testing.T) {
	err := NotFound("asset", "a-1")
	if err.Code != CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %s", err.Code)
	}
	if err.HTTPStatus() != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", err.HTTPStatus())
	}
	want := `[NOT_FOUND/asset_NOT_FOUND] asset "a-1" not found`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestWrap_PreservesUnderlyingError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("create asset", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	if err.HTTPStatus() != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", err.HTTPStatus())
	}
}

func TestWithDetail_AttachesDiagnostics(t *testing.T) {
	err := InvalidInput("tokenAmount", "must be positive")
	if err.Details["field"] != "tokenAmount" {
		t.Fatalf("expected field detail, got %v", err.Details)
	}
	err.WithDetail("value", -5)
	if err.Details["value"] != -5 {
		t.Fatalf("expected value detail, got %v", err.Details)
	}
}

func TestAs_ExtractsDomainError(t *testing.T) {
	err := Forbidden("NOT_OWNER", "caller does not own this bid")
	var wrapped error = err
	extracted, ok := As(wrapped)
	if !ok || extracted.Code != CodeForbidden {
		t.Fatalf("expected to extract *Error with CodeForbidden, got %v ok=%v", extracted, ok)
	}
}

func TestCodeOf_DefaultsToInternalForPlainErrors(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Fatalf("expected CodeInternal for non-domain error, got %s", got)
	}
	if got := CodeOf(KYCRequired("u-1")); got != CodeKYCRequired {
		t.Fatalf("expected CodeKYCRequired, got %s", got)
	}
}

func TestCollaboratorFailure_WrapsCauseWithCollaboratorDetail(t *testing.T) {
	cause := errors.New("timeout")
	err := CollaboratorFailure("payment", cause)
	if err.Code != CodeCollaboratorFailure {
		t.Fatalf("expected CodeCollaboratorFailure, got %s", err.Code)
	}
	if err.Details["collaborator"] != "payment" {
		t.Fatalf("expected collaborator detail, got %v", err.Details)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to unwrap")
	}
}
