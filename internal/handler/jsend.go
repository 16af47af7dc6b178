package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// jsend形式のレスポンス封筒。
//
//	success: {"status":"success","data":...}
//	fail:    {"status":"fail","data":{"message":...}}
//	error:   {"status":"error","message":...}
type Envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeSuccess(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{Status: "success", Data: data})
}

func writeFail(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{Status: "fail", Data: data})
}

func failMessage(msg string) map[string]interface{} {
	return map[string]interface{}{"message": msg}
}

// usecaseのエラー種別をHTTPステータスとjsendへ変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	ue, ok := usecase.AsError(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.JSON(http.StatusInternalServerError, Envelope{Status: "error", Message: "internal error"})
	}

	switch ue.Kind {
	case usecase.KindValidation, usecase.KindInvalidState:
		return writeFail(c, http.StatusBadRequest, failMessage(ue.Message))
	case usecase.KindInsufficientStock:
		data := failMessage(ue.Message)
		data["available"] = ue.Available
		return writeFail(c, http.StatusBadRequest, data)
	case usecase.KindNotFound:
		return writeFail(c, http.StatusNotFound, failMessage(ue.Message))
	case usecase.KindUnauthenticated:
		return writeFail(c, http.StatusUnauthorized, failMessage(ue.Message))
	case usecase.KindForbidden:
		return writeFail(c, http.StatusForbidden, failMessage(ue.Message))
	case usecase.KindConflict:
		return writeFail(c, http.StatusConflict, failMessage(ue.Message))
	default:
		log.Error().Err(ue.Unwrap()).Str("path", c.Path()).Msg("internal error")
		return c.JSON(http.StatusInternalServerError, Envelope{Status: "error", Message: "internal error"})
	}
}
