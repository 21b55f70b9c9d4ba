package exams

import "strings"

// PrepType is a kind of preparation resource.
type PrepType string

const (
	PrepCommunity      PrepType = "community"
	PrepELearning      PrepType = "elearning"
	PrepOnlineTraining PrepType = "onlinetraining"
	PrepPracticeTest   PrepType = "practice-test"
	PrepSelfLearning   PrepType = "selflearning"
	PrepStudyGuide     PrepType = "studyguide"
	PrepTraining       PrepType = "training"
	PrepBooks          PrepType = "books"
)

var prepTypes = func() map[string]PrepType {
	known := []PrepType{
		PrepCommunity,
		PrepELearning,
		PrepOnlineTraining,
		PrepPracticeTest,
		PrepSelfLearning,
		PrepStudyGuide,
		PrepTraining,
		PrepBooks,
	}
	out := map[string]PrepType{}
	for _, t := range known {
		out[prepKey(string(t))] = t
	}
	return out
}()

func prepKey(id string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), "-", "")
}

// ParsePrepType maps a preparation section id onto the vocabulary, hyphens
// and casing are ignored so "online-training" and "practicetest" are accepted.
func ParsePrepType(id string) (PrepType, bool) {
	t, ok := prepTypes[prepKey(id)]
	return t, ok
}
