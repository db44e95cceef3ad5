package bridge

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pinegrove/cloudcore/internal/npc"
	"github.com/pinegrove/cloudcore/internal/pressure"
	"github.com/pinegrove/cloudcore/internal/zone"
)

// #region codes

// Stable error codes of the bridge wire contract.
const (
	ErrBadRequest  = "E_BAD_REQUEST"
	ErrBadTimestep = "E_BAD_TIMESTEP"
	ErrUnknownZone = "E_UNKNOWN_ZONE"
	ErrUnknownNPC  = "E_UNKNOWN_NPC"
	ErrGateClosed  = "E_GATE_CLOSED"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:  {},
	ErrBadTimestep: {},
	ErrUnknownZone: {},
	ErrUnknownNPC:  {},
	ErrGateClosed:  {},
	ErrInternal:    {},
}

// IsKnownCode reports whether a code belongs to the published taxonomy.
func IsKnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// #endregion codes

// #region responses

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError renders the uniform error envelope.
func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps core error values onto the wire taxonomy. A
// rejected tick always leaves simulation state untouched, so every one of
// these is safe to retry.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, pressure.ErrInvalidTimestep):
		return writeError(c, http.StatusBadRequest, ErrBadTimestep, err.Error())
	case errors.Is(err, zone.ErrUnknownZone):
		return writeError(c, http.StatusNotFound, ErrUnknownZone, err.Error())
	case errors.Is(err, npc.ErrUnknownNPC):
		return writeError(c, http.StatusNotFound, ErrUnknownNPC, err.Error())
	case errors.Is(err, npc.ErrUnknownRule):
		return writeError(c, http.StatusBadRequest, ErrBadRequest, err.Error())
	case errors.Is(err, npc.ErrGateClosed):
		return writeError(c, http.StatusConflict, ErrGateClosed, err.Error())
	}
	return writeError(c, http.StatusInternalServerError, ErrInternal, err.Error())
}

// #endregion responses
