package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Run("fixed ids", func(t *testing.T) {
		assert.Equal(t, firstText, Text(QuestionFirst, LanguageNone))
		assert.Equal(t, devExperienceText, Text(QuestionDevExperience, LanguageJava))
		assert.Equal(t, finalText, Text(QuestionFinal, LanguageNone))
	})

	t.Run("unknown id yields empty string", func(t *testing.T) {
		assert.Empty(t, Text(QuestionID("NOPE"), LanguageGo))
	})

	t.Run("concept depends on language", func(t *testing.T) {
		want, ok := ConceptQuestion(LanguageGo)
		assert.True(t, ok)
		assert.Equal(t, want, Text(QuestionConcept, LanguageGo))
		assert.Empty(t, Text(QuestionConcept, LanguageC))
		assert.Empty(t, Text(QuestionConcept, LanguageNone))
	})

	t.Run("why language substitutes label", func(t *testing.T) {
		assert.Contains(t, Text(QuestionWhyLanguage, LanguageNode), "（Node.js）")
		assert.Contains(t, Text(QuestionWhyLanguage, LanguageCPP), "（C++）")
		assert.Equal(t, whyLanguageGeneric, Text(QuestionWhyLanguage, LanguageNone))
	})
}

func TestEverySequenceStepHasText(t *testing.T) {
	for _, id := range MainSequence {
		assert.NotEmpty(t, Text(id, LanguageNone), "step %s", id)
	}
}

func TestConceptQuestionSubset(t *testing.T) {
	without := []Language{LanguageC, LanguageCPP, LanguageCSharp, LanguagePHP, LanguageNone}
	for _, l := range without {
		_, ok := ConceptQuestion(l)
		assert.False(t, ok, "language %q", l)
	}
	_, ok := ConceptQuestion(LanguageJava)
	assert.True(t, ok)
}

func TestLanguageLabel(t *testing.T) {
	assert.Equal(t, "JavaScript", LanguageJavaScript.Label())
	assert.Equal(t, "C#", LanguageCSharp.Label())
	assert.Equal(t, "cobol", Language("cobol").Label())
	assert.True(t, LanguageSQL.Valid())
	assert.False(t, LanguageNone.Valid())
	assert.Len(t, Languages, 18)
	for _, l := range Languages {
		assert.True(t, l.Valid(), "language %q", l)
	}
}

func TestOpeningAndLimitReason(t *testing.T) {
	assert.Contains(t, Opening(), firstText)
	assert.Equal(t, "設定された15分の制限時間に達しました。", LimitReason(LimitTime, 15))
	assert.Equal(t, "設定された2問の質問数に達しました。", LimitReason(LimitQuestions, 2))
	assert.Empty(t, LimitReason(LimitKind("other"), 1))
}
