package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	paymentsvc "github.com/medbasket/medbasket-backend/internal/payments"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
)

type stubPaymentService struct {
	result *paymentsvc.VerifyResult
	err    error
}

func (s stubPaymentService) Verify(context.Context, paymentsvc.VerifyRequest) (*paymentsvc.VerifyResult, error) {
	return s.result, s.err
}

const verifyBody = `{
	"razorpay_payment_id": "pay_123",
	"razorpay_order_id": "order_abc",
	"razorpay_signature": "deadbeef"
}`

func TestPaymentVerifySuccess(t *testing.T) {
	handler := PaymentVerify(stubPaymentService{result: &paymentsvc.VerifyResult{
		Success:  true,
		Redirect: paymentsvc.RedirectSuccess,
		Message:  "payment verified",
		OrderID:  11,
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify-payment", strings.NewReader(verifyBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data paymentsvc.VerifyResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Success || envelope.Data.Redirect != paymentsvc.RedirectSuccess {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestPaymentVerifyFailureIsTerminalNotAnError(t *testing.T) {
	handler := PaymentVerify(stubPaymentService{
		err: pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature mismatch"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify-payment", strings.NewReader(verifyBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data paymentsvc.VerifyResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Success {
		t.Fatal("expected success=false")
	}
	if envelope.Data.Redirect != paymentsvc.RedirectFailed {
		t.Fatalf("expected failed redirect, got %q", envelope.Data.Redirect)
	}
}

func TestPaymentVerifyUnknownPendingOrder(t *testing.T) {
	handler := PaymentVerify(stubPaymentService{
		err: pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify-payment", strings.NewReader(verifyBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestPaymentVerifyRejectsMissingFields(t *testing.T) {
	handler := PaymentVerify(stubPaymentService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify-payment", strings.NewReader(`{"razorpay_payment_id": "pay_123"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
