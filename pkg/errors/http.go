package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTPStatus는 에러 코드를 HTTP 상태 코드로 변환합니다
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// StatusOf는 임의의 에러에 대한 HTTP 상태 코드를 반환합니다
func StatusOf(err error) int {
	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr.Code
	}
	return ToHTTPStatus(CodeOf(err))
}

// PublicMessage는 응답 본문에 넣을 메시지를 반환합니다.
// 내부 에러는 원인을 숨기고 상태 텍스트만 노출합니다
func PublicMessage(err error) string {
	var appErr *AppError
	if As(err, &appErr) && appErr.Code() != ErrInternal {
		return appErr.Message()
	}
	return http.StatusText(StatusOf(err))
}

// ToHTTPError는 에러를 Echo HTTP 에러로 변환합니다
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	return echo.NewHTTPError(StatusOf(err), PublicMessage(err))
}
