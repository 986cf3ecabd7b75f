// File: pkg/logger/echo_logger.go
package logger

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
	"go.uber.org/zap"
)

// 로그에 그대로 남기면 안 되는 헤더
var maskedHeaders = map[string]bool{
	"Authorization":    true,
	"X-Internal-Token": true,
}

// NewEchoRequestLogger는 zap 기반 HTTP 요청/응답 로깅 미들웨어를 생성합니다.
// /health, /metrics 는 로그에서 제외합니다.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == "/metrics"
		},
		HandleError: true,

		LogLatency:   true,
		LogRemoteIP:  true,
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogRequestID: true,
		LogUserAgent: true,
		LogStatus:    true,
		LogError:     true,
		LogHeaders:   []string{"Content-Type", "Authorization", "X-Internal-Token"},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request.remote_ip", v.RemoteIP),
				zap.String("request.method", v.Method),
				zap.String("request.uri", v.URI),
				zap.String("request.route", v.RoutePath),
				zap.String("request.user_agent", v.UserAgent),
				zap.String("request.request_id", v.RequestID),
				zap.Int("response.status", v.Status),
				zap.Duration("response.latency", v.Latency),
			}

			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}

			if len(v.Headers) > 0 {
				fields = append(fields, zap.Any("request.headers", maskHeaders(v.Headers)))
			}

			switch {
			case v.Error != nil:
				fields = append(fields, zap.Error(v.Error))
				logger.Error("Request failed", fields...)
			case v.Status >= 500:
				logger.Error("Server error", fields...)
			case v.Status >= 400:
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	})
}

func maskHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, values := range headers {
		if len(values) == 0 {
			continue
		}
		val := values[0]
		if maskedHeaders[http.CanonicalHeaderKey(k)] {
			if len(val) > 15 {
				val = val[:10] + "..." + val[len(val)-5:]
			} else {
				val = "[MASKED]"
			}
		}
		out[k] = val
	}
	return out
}

// WithEchoLogger는 Echo 내장 로거를 zap으로 교체하고,
// 에러를 {"error": "..."} JSON 응답으로 바꾸는 에러 핸들러를 설정합니다.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		httpErr := apperrors.ToHTTPError(err)

		if httpErr.Code >= http.StatusInternalServerError {
			apperrors.LogError(logger, err, "HTTP error",
				zap.Int("status", httpErr.Code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
			)
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			err = c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
		if err != nil {
			logger.Error("Failed to send error response", zap.Error(err))
		}
	}
}

// EchoZapLogger는 echo.Logger 인터페이스를 구현한 zap 로거 래퍼입니다.
// 레벨, 프리픽스, 출력 대상 설정은 zap 쪽에서 관리하므로 무시합니다.
type EchoZapLogger struct {
	Logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewEchoZapLogger는 Echo의 Logger 인터페이스를 구현한 zap 로거 래퍼를 생성합니다.
func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{Logger: logger, sugar: logger.Sugar()}
}

func (l *EchoZapLogger) Output() io.Writer { return &zapWriter{logger: l.Logger} }
func (l *EchoZapLogger) SetOutput(w io.Writer) {}
func (l *EchoZapLogger) Level() log.Lvl { return log.INFO }
func (l *EchoZapLogger) SetLevel(v log.Lvl) {}
func (l *EchoZapLogger) SetHeader(h string) {}
func (l *EchoZapLogger) Prefix() string { return "" }
func (l *EchoZapLogger) SetPrefix(p string) {}
func (l *EchoZapLogger) Print(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Debug(i ...interface{}) { l.sugar.Debug(i...) }
func (l *EchoZapLogger) Info(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Warn(i ...interface{}) { l.sugar.Warn(i...) }
func (l *EchoZapLogger) Error(i ...interface{}) { l.sugar.Error(i...) }
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.sugar.Fatal(i...) }
func (l *EchoZapLogger) Panic(i ...interface{}) { l.sugar.Panic(i...) }
func (l *EchoZapLogger) Printj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Debugj(j log.JSON) { l.Logger.Debug("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Infoj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Warnj(j log.JSON) { l.Logger.Warn("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Errorj(j log.JSON) { l.Logger.Error("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.Logger.Fatal("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Panicj(j log.JSON) { l.Logger.Panic("json_message", zap.Any("json", j)) }

func (l *EchoZapLogger) Printf(format string, i ...interface{}) { l.sugar.Infof(format, i...) }
func (l *EchoZapLogger) Debugf(format string, i ...interface{}) { l.sugar.Debugf(format, i...) }
func (l *EchoZapLogger) Infof(format string, i ...interface{}) { l.sugar.Infof(format, i...) }
func (l *EchoZapLogger) Warnf(format string, i ...interface{}) { l.sugar.Warnf(format, i...) }
func (l *EchoZapLogger) Errorf(format string, i ...interface{}) { l.sugar.Errorf(format, i...) }
func (l *EchoZapLogger) Fatalf(format string, i ...interface{}) { l.sugar.Fatalf(format, i...) }
func (l *EchoZapLogger) Panicf(format string, i ...interface{}) { l.sugar.Panicf(format, i...) }

// zapWriter는 Echo가 직접 쓰는 출력(배너 등)을 zap INFO 로그로 보냅니다.
type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Write(p []byte) (n int, err error) {
	w.logger.Info(string(p))
	return len(p), nil
}
