package controllers

import (
	"net/http"

	"github.com/medbasket/medbasket-backend/api/responses"
	"github.com/medbasket/medbasket-backend/api/validators"
	paymentsvc "github.com/medbasket/medbasket-backend/internal/payments"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// PaymentVerify checks the gateway callback payload and promotes the staged
// pending order. A signature mismatch is a terminal outcome for the client,
// so it comes back as a 200 with the failed redirect instead of an error
// status.
func PaymentVerify(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload paymentsvc.VerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), payload)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodePaymentVerification) {
				responses.WriteSuccess(w, paymentsvc.VerifyResult{
					Success:  false,
					Redirect: paymentsvc.RedirectFailed,
					Message:  "payment verification failed",
				})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
