package api

import (
	"errors"
	"net/http"

	"github.com/quantfra/swingdesk/internal/domain/models"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
)

// mapDomainError translates domain sentinels into transport errors.
// Unknown errors stay internal so callers never see raw internals.
func mapDomainError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrNoSuchPosition):
		return xhttp.NotFoundError(err.Error())
	case errors.Is(err, models.ErrInvalidQuantity):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrInvalidStopDistance):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrInsufficientFunds):
		return xhttp.NewAppError("ERR_INSUFFICIENT_FUNDS", "", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrInsufficientShares):
		return xhttp.NewAppError("ERR_INSUFFICIENT_SHARES", "", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.NewAppError("ERR_INSUFFICIENT_HISTORY", "", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.NewAppError("ERR_DATA_UNAVAILABLE", "", err.Error(), http.StatusBadGateway)
	case errors.Is(err, models.ErrLedgerInvariant):
		return xhttp.InternalError(err.Error())
	default:
		return xhttp.InternalError("something went wrong").WithError(err)
	}
}
