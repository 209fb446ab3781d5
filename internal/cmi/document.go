// Package cmi はSCORM CMIデータモデル (ドット区切りキーのJSONオブジェクト) の
// 解析・初期化・マージと、受験レコードの派生フィールド同期を扱います。
// ここの関数はDBに触れず、更新後のコピーを返します。
package cmi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"go_scorm_attempt_keep/internal/model"

	"gorm.io/datatypes"
)

// Document はCMIデータモデル (例: "cmi.completion_status" -> "completed")
type Document map[string]any

// Parse はクライアントから送られたCMIデータを解析します。
// JSONオブジェクトをそのまま、または文字列化したJSONオブジェクトを受け付けます。
func Parse(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", model.ErrMalformedDocument)
	}

	// フロントエンドは JSON.stringify した文字列で送ってくることがある
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedDocument, err)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 || trimmed[0] == '"' {
			return nil, fmt.Errorf("%w: not a key/value object", model.ErrMalformedDocument)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not a key/value object", model.ErrMalformedDocument)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", model.ErrMalformedDocument)
	}
	return doc, nil
}

// Decode は保存済みのCMIデータを読み出します。
// 保存済みデータが壊れているのはクライアントの責任ではないので内部エラー扱い。
func Decode(stored datatypes.JSON) (Document, error) {
	if len(bytes.TrimSpace(stored)) == 0 {
		return Document{}, nil
	}
	doc, err := Parse(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: stored cmi datamodel is unreadable: %v", model.ErrInternalServer, err)
	}
	return doc, nil
}

// Encode は保存用にシリアライズします (キー順は安定)
func (d Document) Encode() (datatypes.JSON, error) {
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("%w: encode cmi datamodel: %v", model.ErrInternalServer, err)
	}
	return datatypes.JSON(b), nil
}

// String はキーの値を文字列として返します。数値・真偽値は文字列化し、
// 存在しないキーやネストした値は空文字を返します。
func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Clone はシャローコピーを返します (値はスカラー想定)
func (d Document) Clone() Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Merge は incoming のキーで上書きした新しいDocumentを返します
func (d Document) Merge(incoming Document) Document {
	merged := d.Clone()
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

// Derived はCMIデータから導出される受験レコードの列
type Derived struct {
	CompletionStatus bool
	SuccessStatus    bool
	ScoreScaled      *float64
}

// Derive はCMIデータから派生フィールドを計算します
func Derive(d Document) Derived {
	return Derived{
		CompletionStatus: d.String(model.CmiCompletionStatus) == model.CmiStatusCompleted,
		SuccessStatus:    d.String(model.CmiSuccessStatus) == model.CmiStatusPassed,
		ScoreScaled:      parseScore(d.String(model.CmiScoreScaled)),
	}
}

// parseScore は範囲チェックをしない (CMI上は 0..1 だが元の挙動に合わせる)
func parseScore(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
