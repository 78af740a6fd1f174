// Package detect extracts keyword signals from free-text interview answers.
//
// All functions are pure and total. Input is normalized with NFKC, hiragana
// is folded to katakana and ASCII is lowercased before any pattern runs, so
// full-width Latin, half-width kana and either kana script compare alike.
package detect

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	hiraganaFirst = 'ぁ'
	hiraganaLast  = 'ゖ'
	kanaOffset    = 0x60
)

// Normalize returns the canonical form every detector matches against.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		if r >= hiraganaFirst && r <= hiraganaLast {
			return r + kanaOffset
		}
		if r <= unicode.MaxASCII {
			return unicode.ToLower(r)
		}
		return r
	}, s)
}

var (
	javaWord     = regexp.MustCompile(`\bjava(?:[0-9]+|ee|se|fx)?\b`)
	javaKatakana = regexp.MustCompile(`ジャ(?:バ|ヴァ)`)

	teamWord     = regexp.MustCompile(`\bteams?\b`)
	teamKatakana = regexp.MustCompile(`チーム|共同|担当|役割|スクラム|モブ|ペアプロ`)
)

// MentionsJava reports whether text names Java, either as the ASCII word
// (optionally with a version or edition suffix such as Java8 or JavaEE) or
// phonetically in katakana. A katakana "Java" followed by "Script" does not
// count.
func MentionsJava(text string) bool {
	return mentionsJava(Normalize(text))
}

func mentionsJava(s string) bool {
	if javaWord.MatchString(s) {
		return true
	}
	for _, loc := range javaKatakana.FindAllStringIndex(s, -1) {
		if !followedByScript(s[loc[1]:]) {
			return true
		}
	}
	return false
}

// followedByScript reports whether rest begins with スクリプト, allowing
// surrounding whitespace and a single separator in between.
func followedByScript(rest string) bool {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	for _, sep := range []string{"・", "ー", "-"} {
		if strings.HasPrefix(rest, sep) {
			rest = strings.TrimLeftFunc(rest[len(sep):], unicode.IsSpace)
			break
		}
	}
	return strings.HasPrefix(rest, "スクリプト")
}

// MentionsTeam reports whether text talks about working in a team: the word
// "team", its Japanese form, or one of a few collaboration terms (joint
// work, role, scrum, mob and pair programming).
func MentionsTeam(text string) bool {
	s := Normalize(text)
	return teamWord.MatchString(s) || teamKatakana.MatchString(s)
}
