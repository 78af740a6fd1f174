package detect

import (
	"regexp"

	"github.com/txn2/interview-platform/pkg/catalog"
)

// languageRule matches one technology key. Either match or pattern is set.
type languageRule struct {
	key     catalog.Language
	pattern *regexp.Regexp
	match   func(normalized string) bool
}

func (r languageRule) matches(s string) bool {
	if r.match != nil {
		return r.match(s)
	}
	return r.pattern.MatchString(s)
}

// languageRules is evaluated in order and the first hit wins. Frameworks
// come before the language they are written in, C++ and C# before C, and
// TypeScript before JavaScript before Node. A bare "next" only counts when
// Japanese text follows it, so "next time" stays unmatched.
var languageRules = []languageRule{
	{key: catalog.LanguageReact, pattern: regexp.MustCompile(`\breact(?:\.?js)?\b|\bnext(?:\.?js\b|\s*[^\x00-\x7f\p{P}])|リアクト`)},
	{key: catalog.LanguageJava, match: mentionsJava},
	{key: catalog.LanguageTypeScript, pattern: regexp.MustCompile(`\btypescript\b|\bts\b|タイプスクリプト`)},
	{key: catalog.LanguageJavaScript, pattern: regexp.MustCompile(`\bjavascript\b|(?:^|[^.a-z0-9_])js\b|ジャ(?:バ|ヴァ)\s*[・ー-]?\s*スクリプト`)},
	{key: catalog.LanguageNode, pattern: regexp.MustCompile(`\bnode(?:\.?js)?\b|ノード`)},
	{key: catalog.LanguagePython, pattern: regexp.MustCompile(`\bpython[0-9]*\b|パイソン`)},
	{key: catalog.LanguageGo, pattern: regexp.MustCompile(`\bgolang\b|\bgo\b|go言語`)},
	{key: catalog.LanguageRuby, pattern: regexp.MustCompile(`\bruby\b|\brails\b|ルビー`)},
	{key: catalog.LanguageRust, pattern: regexp.MustCompile(`\brust\b|(?:^|[^イ])ラスト`)},
	{key: catalog.LanguageSwift, pattern: regexp.MustCompile(`\bswift\b|スウィフト`)},
	{key: catalog.LanguageKotlin, pattern: regexp.MustCompile(`\bkotlin\b|コトリン`)},
	{key: catalog.LanguageVue, pattern: regexp.MustCompile(`\bvue(?:\.?js)?\b`)},
	{key: catalog.LanguageAngular, pattern: regexp.MustCompile(`\bangular(?:js)?\b`)},
	{key: catalog.LanguageCPP, pattern: regexp.MustCompile(`\bc\+\+|\bcpp\b|シープラスプラス`)},
	{key: catalog.LanguageCSharp, pattern: regexp.MustCompile(`\bc#|\bc-?sharp\b|シーシャープ`)},
	{key: catalog.LanguageC, pattern: regexp.MustCompile(`\bc\b|c言語`)},
	{key: catalog.LanguagePHP, pattern: regexp.MustCompile(`\bphp\b|ピーエイチピー`)},
	{key: catalog.LanguageSQL, pattern: regexp.MustCompile(`\b[a-z]*sql\b|エスキューエル`)},
}

// DetectLanguage returns the first technology named in text according to
// precedence, or catalog.LanguageNone.
func DetectLanguage(text string) catalog.Language {
	s := Normalize(text)
	if s == "" {
		return catalog.LanguageNone
	}
	for _, rule := range languageRules {
		if rule.matches(s) {
			return rule.key
		}
	}
	return catalog.LanguageNone
}
