package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ja" // 日本語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja" // 日本語翻訳
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"cmi_datamodel": "CMIデータ",
	"terminated":    "終了フラグ",
}

func init() {
	// バリデータのインスタンスを生成
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// --- ここからが日本語化の処理 ---

	// 日本語のロケールとトランスレータを設定
	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	// バリデータに日本語の翻訳を登録
	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// 必要に応じて、個別のエラーメッセージを上書き・カスタマイズ
	// registerTranslation は、メッセージテンプレートを登録するヘルパー関数
	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fieldLabel(fe.Field()))
			return t
		})
	}

	registerTranslation("required", "{0}は必須項目です。")
}

// fieldLabel はjsonタグ名を日本語の項目名に変換します (未登録ならそのまま)
func fieldLabel(field string) string {
	if label, ok := fieldNameTranslations[field]; ok {
		return label
	}
	return field
}
