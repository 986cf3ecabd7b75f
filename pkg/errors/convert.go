package errors

import "net/http"

// CodePair는 프레임워크 간 코드 매핑을 위한 구조체입니다
type CodePair struct {
	HTTPStatus int
	GRPCCode   int
}

var codeMapping = map[string]CodePair{
	ErrInternal:        {http.StatusInternalServerError, 13}, // INTERNAL
	ErrNotFound:        {http.StatusNotFound, 5},             // NOT_FOUND
	ErrInvalidArgument: {http.StatusBadRequest, 3},           // INVALID_ARGUMENT
	ErrUnauthenticated: {http.StatusUnauthorized, 16},        // UNAUTHENTICATED
	ErrUnauthorized:    {http.StatusForbidden, 7},            // PERMISSION_DENIED
	ErrTimeout:         {http.StatusGatewayTimeout, 4},       // DEADLINE_EXCEEDED
	ErrValidation:      {http.StatusUnprocessableEntity, 3},  // INVALID_ARGUMENT
	ErrConfiguration:   {http.StatusInternalServerError, 9},  // FAILED_PRECONDITION
	ErrProvider:        {http.StatusUnprocessableEntity, 14}, // UNAVAILABLE
}

// GetCodeMapping은 특정 에러 코드에 대한 HTTP 및 gRPC 코드 매핑을 반환합니다
func GetCodeMapping(code string) (int, int) {
	if pair, ok := codeMapping[code]; ok {
		return pair.HTTPStatus, pair.GRPCCode
	}
	return http.StatusInternalServerError, 13
}
