package errors

import (
	"go.uber.org/zap"
)

// LogError는 에러를 구조화된 로그로 기록합니다.
// 클라이언트 측 에러(VALIDATION, PROVIDER)는 WARN 레벨로 남깁니다
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	code := CodeOf(err)
	allFields = append(allFields, zap.String("error_code", code))
	allFields = append(allFields, fields...)

	switch code {
	case ErrValidation, ErrProvider, ErrNotFound:
		logger.Warn(msg, allFields...)
	default:
		logger.Error(msg, allFields...)
	}
}
