// Package dialogue decides the next interview question from a session's
// progress and the applicant's latest answer.
//
// The decision is an ordered list of guarded rules; the first rule that
// fires wins. Deciding mutates only the progress fields of the session
// (concept/background/team flags, detected language and the main sequence
// cursor). It never touches the history.
package dialogue

import (
	"github.com/txn2/interview-platform/pkg/catalog"
	"github.com/txn2/interview-platform/pkg/detect"
	"github.com/txn2/interview-platform/pkg/session"
)

// Rule names reported in Decision.Rule.
const (
	RuleAfterIntroduction = "after_introduction"
	RuleAfterExperience   = "after_experience"
	RuleBackground        = "background_followup"
	RuleMainSequence      = "main_sequence"
	RuleClosing           = "closing"
)

// Decision is the next thing the interviewer says.
type Decision struct {
	QuestionID catalog.QuestionID
	Text       string

	// Final is set on the closing statement.
	Final bool

	// Rule names the rule that produced the decision.
	Rule string
}

type rule struct {
	name   string
	decide func(s *session.Session, answer string) (catalog.QuestionID, bool)
}

// rules run in priority order.
var rules = []rule{
	{name: RuleAfterIntroduction, decide: afterIntroduction},
	{name: RuleAfterExperience, decide: afterExperience},
	{name: RuleBackground, decide: backgroundFollowup},
	{name: RuleMainSequence, decide: nextInSequence},
}

// Decide returns the question to ask after lastAnswer, updating the
// progress fields of s. s.QuestionCount must still count the question being
// answered; the caller increments it afterwards.
func Decide(s *session.Session, lastAnswer string) Decision {
	if detect.MentionsTeam(lastAnswer) {
		s.TeamSeen = true
	}

	for _, r := range rules {
		if id, ok := r.decide(s, lastAnswer); ok {
			return Decision{
				QuestionID: id,
				Text:       catalog.Text(id, s.LanguageKey),
				Rule:       r.name,
			}
		}
	}

	return Decision{
		QuestionID: catalog.QuestionFinal,
		Text:       catalog.Closing(),
		Final:      true,
		Rule:       RuleClosing,
	}
}

// afterIntroduction always follows the self-introduction with the
// development-experience question.
func afterIntroduction(s *session.Session, _ string) (catalog.QuestionID, bool) {
	if s.QuestionCount != 1 {
		return "", false
	}
	return catalog.QuestionDevExperience, true
}

// afterExperience detects the applicant's main language once and asks its
// concept question, or goes straight to the background question when the
// language has none.
func afterExperience(s *session.Session, answer string) (catalog.QuestionID, bool) {
	if s.QuestionCount != 2 {
		return "", false
	}
	s.LanguageKey = detect.DetectLanguage(answer)
	if _, ok := catalog.ConceptQuestion(s.LanguageKey); ok {
		s.ConceptAsked = true
		return catalog.QuestionConcept, true
	}
	s.BackgroundAsked = true
	return catalog.QuestionBackground, true
}

// backgroundFollowup asks the background question right after a concept
// question.
func backgroundFollowup(s *session.Session, _ string) (catalog.QuestionID, bool) {
	if !s.ConceptAsked || s.BackgroundAsked {
		return "", false
	}
	s.BackgroundAsked = true
	return catalog.QuestionBackground, true
}

// condition gates a conditional main sequence step.
type condition struct {
	allow func(s *session.Session) bool
	mark  func(s *session.Session)
}

var conditions = map[catalog.QuestionID]condition{
	catalog.QuestionTeamRole: {
		allow: func(s *session.Session) bool { return s.TeamSeen && !s.AskedTeamRole },
		mark:  func(s *session.Session) { s.AskedTeamRole = true },
	},
}

// nextInSequence consumes main sequence steps until one emits a question.
// Skipped steps are consumed too.
func nextInSequence(s *session.Session, _ string) (catalog.QuestionID, bool) {
	for s.MainIndex < len(catalog.MainSequence) {
		id := catalog.MainSequence[s.MainIndex]
		s.MainIndex++

		if c, ok := conditions[id]; ok {
			if !c.allow(s) {
				continue
			}
			c.mark(s)
		}
		return id, true
	}
	return "", false
}
