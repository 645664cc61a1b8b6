package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "id").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":         "invalid type",
		"invalid_enum":         "value is not one of the allowed values",
		"constraint":           "constraint failed",
		"unresolved_reference": "reference is unresolved",
		"duplicate_id":         "duplicate id {id}",
		"duplicate_key":        "duplicate key",
		"unknown_key":          "unknown key {key}",
		"parse_error":          "parse error",
		"truncated":            "truncated",
	},
	"ja": {
		"invalid_type":         "型が不正です",
		"invalid_enum":         "許可された値ではありません",
		"constraint":           "制約違反です",
		"unresolved_reference": "参照が解決されていません",
		"duplicate_id":         "IDが重複しています: {id}",
		"duplicate_key":        "キーが重複しています",
		"unknown_key":          "未知のキーです: {key}",
		"parse_error":          "解析エラー",
		"truncated":            "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
