package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for error codes.
// data provides values substituted for {name} placeholders in the message
// (for example "expected", "found" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"shape_mismatch":     "Expected a {expected}, but found {found}.",
		"unknown_key":        "Unknown key: {key}",
		"value_conversion":   "Failed to convert '{input}' to {type}: {cause}",
		"missing_result":     "Outcome has no result",
		"already_has_result": "Outcome already has a result",
		"no_codec":           "No codec found for type: {type}",
		"inline_mismatch":    "Expected ‘{expected}’, but got ‘{found}’.",
		"map_null":           "Failed to map null!",
		"map_result":         "Failed to map data result!",
		"map_value":          "Failed to map value!",
		"construct":          "Failed to construct value: {cause}",
		"field_errors":       "Errors in '{field}':",
		"key_errors":         "Errors in key '{key}':",
	},
	"ja": {
		"shape_mismatch":     "{expected} が必要ですが {found} が見つかりました。",
		"unknown_key":        "未知のキーです: {key}",
		"value_conversion":   "'{input}' を {type} に変換できません: {cause}",
		"missing_result":     "結果がありません",
		"already_has_result": "既に結果があります",
		"no_codec":           "型に対応するコーデックがありません: {type}",
		"inline_mismatch":    "‘{expected}’ の形式が必要ですが ‘{found}’ でした。",
		"map_null":           "null を変換できません",
		"map_result":         "結果の変換に失敗しました",
		"map_value":          "値の変換に失敗しました",
		"construct":          "値の構築に失敗しました: {cause}",
		"field_errors":       "'{field}' のエラー:",
		"key_errors":         "キー '{key}' のエラー:",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		msg, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return expand(msg, data)
}

func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().tr.Message(code, data)
}
