package controllers

import (
	"net/http"

	"github.com/medbasket/medbasket-backend/api/responses"
	settingssvc "github.com/medbasket/medbasket-backend/internal/settings"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// SettingsPricing exposes the shipping and fee configuration so the client
// can show charges before checkout.
func SettingsPricing(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		pricing, err := svc.GetPricing(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pricing)
	}
}
