// Package catalog holds the fixed question texts of an interview and the
// finite set of technology keys that parameterize some of them.
//
// Every lookup here is total: an unknown id or a language without a concept
// question yields an empty string or false, never a panic.
package catalog

import "fmt"

// QuestionID identifies a question (or closing statement) in the interview.
type QuestionID string

// Question identifiers. The string values are persisted in session records.
const (
	QuestionFirst          QuestionID = "FIRST"
	QuestionDevExperience  QuestionID = "DEV_EXP"
	QuestionConcept        QuestionID = "CONCEPT"
	QuestionBackground     QuestionID = "BACKGROUND"
	QuestionTeamRole       QuestionID = "TEAM_ROLE"
	QuestionWhyLanguage    QuestionID = "WHY_LANGUAGE"
	QuestionOtherFavorites QuestionID = "OTHER_FAVORITES"
	QuestionDiffLanguages  QuestionID = "DIFF_LANG"
	QuestionGenAI          QuestionID = "GENAI"
	QuestionStrength       QuestionID = "STRENGTH"
	QuestionCareer         QuestionID = "CAREER"
	QuestionAtCompany      QuestionID = "AT_COMPANY"
	QuestionAnyQuestions   QuestionID = "ANY_QUESTIONS"
	QuestionFinal          QuestionID = "FINAL"
)

// MainSequence is the fixed order of the closing-phase questions asked after
// the adaptive concept/background phase. TEAM_ROLE is the only conditional step.
var MainSequence = []QuestionID{
	QuestionTeamRole,
	QuestionWhyLanguage,
	QuestionOtherFavorites,
	QuestionDiffLanguages,
	QuestionGenAI,
	QuestionStrength,
	QuestionCareer,
	QuestionAtCompany,
	QuestionAnyQuestions,
}

const (
	introMessage = "本日面接を担当する小林です。よろしくお願いいたします。"

	firstText         = "自己紹介をお願いします。"
	devExperienceText = "開発経験を教えて頂ければと思います。どの言語・フレームワークで、どんなプロジェクトをやりましたか？"
	backgroundText    = "それを開発しようと思った背景を、さらに詳しく教えてください。"
	teamRoleText      = "先ほどチームでの開発に触れていましたが、チーム開発でのあなたの役割を教えてください。"
	otherFavorites    = "他に好きな言語や得意な言語があれば教えてください。"
	diffLanguagesText = "使ったことのある言語の違い（型付け・並行処理・エコシステムなど）を、具体例を交えて説明してください。"
	genAIText         = "開発で生成AIを使いましたか？また、日頃の開発で生成AIをどのように活用しているか教えてください。"
	strengthText      = "それでは、視点を変えてあなたの強みを教えてください。"
	careerText        = "エンジニアとしてのキャリアビジョンを教えてください。"
	atCompanyText     = "弊社に入ったら、どのような取り組みをしたいですか？"
	anyQuestionsText  = "こちらからの質問は以上です。何か質問があればお答えします。何かありますか？"
	finalText         = "ありがとうございました。以上で面接は終了です。お疲れ様でした。"

	whyLanguageGeneric = "なぜその技術選定にしたのですか？技術的な理由や制約も含めて教えてください。"
	whyLanguageFormat  = "なぜその開発言語（%s）を選定したのですか？技術的な理由や制約も含めて教えてください。"
)

// fixedTexts maps the unparameterized ids to their text.
var fixedTexts = map[QuestionID]string{
	QuestionFirst:          firstText,
	QuestionDevExperience:  devExperienceText,
	QuestionBackground:     backgroundText,
	QuestionTeamRole:       teamRoleText,
	QuestionOtherFavorites: otherFavorites,
	QuestionDiffLanguages:  diffLanguagesText,
	QuestionGenAI:          genAIText,
	QuestionStrength:       strengthText,
	QuestionCareer:         careerText,
	QuestionAtCompany:      atCompanyText,
	QuestionAnyQuestions:   anyQuestionsText,
	QuestionFinal:          finalText,
}

// Text returns the display text for id. CONCEPT and WHY_LANGUAGE depend on
// lang. Unknown ids, and CONCEPT for a language without a concept question,
// yield "".
func Text(id QuestionID, lang Language) string {
	switch id {
	case QuestionConcept:
		q, _ := ConceptQuestion(lang)
		return q
	case QuestionWhyLanguage:
		return WhyLanguage(lang)
	default:
		return fixedTexts[id]
	}
}

// WhyLanguage returns the why-this-language question, naming lang when one
// was detected.
func WhyLanguage(lang Language) string {
	if lang == LanguageNone {
		return whyLanguageGeneric
	}
	return fmt.Sprintf(whyLanguageFormat, lang.Label())
}

// Opening is what the interviewer says when a session starts: a short
// introduction followed by the FIRST question.
func Opening() string {
	return introMessage + " それでは、" + firstText
}

// Closing is the statement that ends every interview.
func Closing() string {
	return finalText
}

// LimitKind names the session limit that ended an interview early.
type LimitKind string

// Session limits.
const (
	LimitTime      LimitKind = "time"
	LimitQuestions LimitKind = "questions"
)

// LimitReason returns the sentence spoken before the closing statement when
// a session limit is reached. value is the configured limit.
func LimitReason(kind LimitKind, value int) string {
	switch kind {
	case LimitTime:
		return fmt.Sprintf("設定された%d分の制限時間に達しました。", value)
	case LimitQuestions:
		return fmt.Sprintf("設定された%d問の質問数に達しました。", value)
	default:
		return ""
	}
}
