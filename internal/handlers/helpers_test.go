package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_scorm_attempt_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// httpRequestDetails はHTTPリクエストの送信に必要な情報をまとめます。
type httpRequestDetails struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// sendRequest はリクエストを送信し、ステータスコードを検証してボディを返します。
// Body が string ならそのまま送る (不正なJSONのテスト用)。
func sendRequest(t *testing.T, handler http.Handler, details httpRequestDetails, expectedCode int) []byte {
	t.Helper()

	rr, err := serveRequest(handler, details)
	require.NoError(t, err, "Failed to build request")

	assert.Equal(t, expectedCode, rr.Code, "Status code mismatch: body=%s", rr.Body.String())
	return rr.Body.Bytes()
}

// sendRequestE は t を使わずに sendRequest と同じ検証を行い、エラーで返します。
// errgroup のゴルーチン内ではこちらを使う。
func sendRequestE(handler http.Handler, details httpRequestDetails, expectedCode int) ([]byte, error) {
	rr, err := serveRequest(handler, details)
	if err != nil {
		return nil, err
	}
	if rr.Code != expectedCode {
		return nil, fmt.Errorf("%s %s: status %d, want %d: body=%s", details.Method, details.Path, rr.Code, expectedCode, rr.Body.String())
	}
	return rr.Body.Bytes(), nil
}

func serveRequest(handler http.Handler, details httpRequestDetails) (*httptest.ResponseRecorder, error) {
	var reqBody io.Reader
	if details.Body != nil {
		if s, ok := details.Body.(string); ok {
			reqBody = strings.NewReader(s)
		} else {
			b, err := json.Marshal(details.Body)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
			reqBody = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(details.Method, details.Path, reqBody)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range details.Headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, nil
}

// verifyErrorCode はエラーレスポンスのコードを検証します
func verifyErrorCode(t *testing.T, body []byte, expectedCode string) {
	t.Helper()
	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp), "error response should be JSON: %s", string(body))
	assert.Equal(t, expectedCode, errResp.Error.Code)
}

func decodeAttempt(t *testing.T, body []byte) model.TestAttemptResponse {
	t.Helper()
	var resp model.TestAttemptResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}
