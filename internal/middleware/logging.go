package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logCtxKey はコンテキストにロガーを格納するためのキーです。
type logCtxKey struct{}

// maxLogBodyBytes を超えるボディは詳細ログで切り詰める (CMIデータは大きくなりやすい)
const maxLogBodyBytes = 2048

// sensitiveHeaders はログ出力時に値をマスキングするヘッダー名のリストです (小文字で定義)。
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"x-api-key":     true,
	"x-csrf-token":  true,
}

// responseLogger は http.ResponseWriter をラップし、ステータスコードとレスポンスボディを記録します。
type responseLogger struct {
	http.ResponseWriter
	statusCode int
	bytesOut   int
	body       *bytes.Buffer // 詳細ログ有効時のみ
}

func newResponseLogger(w http.ResponseWriter, captureBody bool) *responseLogger {
	rl := &responseLogger{ResponseWriter: w, statusCode: http.StatusOK}
	if captureBody {
		rl.body = new(bytes.Buffer)
	}
	return rl
}

func (rl *responseLogger) WriteHeader(statusCode int) {
	rl.statusCode = statusCode
	rl.ResponseWriter.WriteHeader(statusCode)
}

func (rl *responseLogger) Write(b []byte) (int, error) {
	n, err := rl.ResponseWriter.Write(b)
	rl.bytesOut += n
	if rl.body != nil && rl.body.Len() < maxLogBodyBytes {
		rl.body.Write(b[:n])
	}
	return n, err
}

// Flush はラップ先が http.Flusher なら委譲します
func (rl *responseLogger) Flush() {
	if f, ok := rl.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingMiddleware はリクエスト/レスポンスのログ出力を一元管理するミドルウェアです。
// リクエストID付きのロガーをコンテキストに入れるので、以降は GetLogger で取り出します。
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			requestLogger := logger.With("req_id", middleware.GetReqID(r.Context()))
			ctx := context.WithValue(r.Context(), logCtxKey{}, requestLogger)
			r = r.WithContext(ctx)

			requestLogger.Info("Request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			debug := logger.Enabled(ctx, slog.LevelDebug)

			// リクエストボディを読み戻せる形で保持 (デバッグ用)
			var reqBodyBytes []byte
			if debug && r.Body != nil && isTextual(r.Header.Get("Content-Type")) {
				reqBodyBytes, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
			}

			rl := newResponseLogger(w, debug)
			next.ServeHTTP(rl, r)

			latency := time.Since(startTime)
			logLevel := slog.LevelInfo
			if rl.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if rl.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			requestLogger.Log(ctx, logLevel, "Request completed",
				"status", rl.statusCode,
				"latency_ms", float64(latency.Nanoseconds())/1e6,
				"bytes_out", rl.bytesOut,
			)

			if debug {
				requestLogger.Debug("Request detail",
					"headers", formatHeaders(r.Header),
					"body", truncateBody(reqBodyBytes),
				)
				respBody := "[binary body not logged]"
				if isTextual(rl.Header().Get("Content-Type")) {
					respBody = truncateBody(rl.body.Bytes())
				}
				requestLogger.Debug("Response detail",
					"status", rl.statusCode,
					"headers", formatHeaders(rl.Header()),
					"body", respBody,
				)
			}
		})
	}
}

// GetLogger はコンテキストから slog.Logger を取得します。
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(logCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger はロガーをコンテキストに格納します (HTTP以外の呼び出し元・テスト用)
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, logger)
}

// formatHeaders はヘッダー情報をログ出力用に整形・マスキングするヘルパー関数
func formatHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			result[key] = "[SENSITIVE]"
		} else {
			result[key] = strings.Join(values, ", ")
		}
	}
	return result
}

func isTextual(contentType string) bool {
	return contentType == "" ||
		strings.HasPrefix(contentType, "application/json") ||
		strings.HasPrefix(contentType, "text/")
}

func truncateBody(b []byte) string {
	if len(b) > maxLogBodyBytes {
		return string(b[:maxLogBodyBytes]) + "... (truncated)"
	}
	return string(b)
}
