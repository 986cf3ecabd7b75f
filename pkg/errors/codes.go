package errors

// 공통 에러 코드 정의
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrTimeout         = "TIMEOUT"

	// 결제 포털 전용 코드
	ErrValidation    = "VALIDATION"    // 필수 입력 누락
	ErrConfiguration = "CONFIGURATION" // 결제 게이트웨이를 만들 수 없음 (API 키 미설정)
	ErrProvider      = "PROVIDER"      // 원격 결제 제공자 호출 실패
)
