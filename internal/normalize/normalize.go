// Package normalize turns the inconsistent spellings of exam and certification
// identifiers found across the vendor's pages into the tokens used as join keys.
package normalize

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legacyExamCodes maps historical exam numbering that shows up without its series
// prefix to the full code.
var legacyExamCodes = map[string]string{
	"532": "70-532",
}

var examPrefixes = []string{"Exam ", "Transition "}

const maxExamCodeLength = 7

// ExamID canonicalizes free text such as "Exam 70-532", "70-532: Upgrading..." or
// "ai-100" into an uppercase exam code. It returns false when the text does not
// carry an identifier ("" or "None"), such values must never become association rows.
func ExamID(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text == "None" {
		return "", false
	}
	for _, prefix := range examPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			break
		}
	}
	if before, _, found := strings.Cut(text, ":"); found {
		text = strings.TrimSpace(before)
	}
	if len(text) > maxExamCodeLength {
		fields := strings.Fields(text)
		if len(fields) > 0 {
			text = fields[0]
		}
	}
	if fixed, ok := legacyExamCodes[text]; ok {
		text = fixed
	}
	text = strings.ToUpper(text)
	if text == "" || text == "NONE" {
		return "", false
	}
	return text, true
}

// LinkExamID is the rule used for exam links inside competency pages, it does
// not change the casing of the code.
func LinkExamID(text string) string {
	examID := text
	if strings.HasPrefix(text, "Exam ") {
		examID = strings.ReplaceAll(text, "Exam ", "")
	}
	if before, _, found := strings.Cut(examID, ":"); found {
		examID = before
	}
	if fixed, ok := legacyExamCodes[examID]; ok {
		examID = fixed
	}
	if len(examID) > maxExamCodeLength {
		examID = strings.Split(examID, " ")[0]
	}
	return examID
}

// DisplayExamCode removes the "Exam " label from a display code such as
// "Exam 70-483".
func DisplayExamCode(code string) string {
	return strings.ReplaceAll(code, "Exam ", "")
}

var examLabels = strings.NewReplacer("Exam ", "", "Transition ", "")

// StripExamLabels removes both the "Exam " and "Transition " labels, it is used
// for the required exams region of certification pages.
func StripExamLabels(text string) string {
	return examLabels.Replace(text)
}

var titleCaser = cases.Title(language.Und)

// CertID derives a certification id from a detail page url whose last path
// segment is a hyphenated slug: ".../azure-administrator.aspx" becomes
// "azureAdministrator".
func CertID(slugURL string) string {
	slug := path.Base(strings.TrimRight(slugURL, "/"))
	slug = strings.TrimSuffix(slug, path.Ext(slug))
	if slug == "" || slug == "." || slug == "/" {
		return ""
	}

	var id strings.Builder
	for _, part := range strings.Split(slug, "-") {
		id.WriteString(titleCaser.String(part))
	}
	out := id.String()
	if out == "" {
		return ""
	}
	return strings.ToLower(out[:1]) + out[1:]
}

const marketingSentence = " Be sure to explore the exam prep resources."

// StripMarketing removes the trailing marketing sentence attached to requirement
// text.
func StripMarketing(text string) string {
	return strings.ReplaceAll(text, marketingSentence, "")
}

const examUIDPrefix = "exam."

// ExamUID turns a content uid such as "exam.az-104" into "AZ-104".
func ExamUID(uid string) (string, bool) {
	if !strings.HasPrefix(uid, examUIDPrefix) {
		return "", false
	}
	return ExamID(strings.TrimPrefix(uid, examUIDPrefix))
}
