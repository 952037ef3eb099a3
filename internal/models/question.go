package models

import "time"

type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "TrueFalse"
	QuestionShortAnswer QuestionType = "ShortAnswer"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

type QuestionCategory string

const (
	CategoryMath      QuestionCategory = "Math"
	CategoryScience   QuestionCategory = "Science"
	CategoryEnglish   QuestionCategory = "English"
	CategoryHistory   QuestionCategory = "History"
	CategoryGeography QuestionCategory = "Geography"
	CategoryComputer  QuestionCategory = "Computer"
	CategoryGeneral   QuestionCategory = "General"
)

// Question is one question-bank document as persisted to the store.
// For MCQ and TrueFalse the correct answer is AnswerIndex into Options;
// ShortAnswer carries free text in AnswerText and no options.
type Question struct {
	ID          string           `json:"id" bson:"_id,omitempty"`
	Text        string           `json:"question_text" bson:"question_text"`
	Type        QuestionType     `json:"question_type" bson:"question_type"`
	Options     []string         `json:"options,omitempty" bson:"options,omitempty"`
	AnswerIndex int              `json:"answer_index" bson:"answer_index"`
	AnswerText  string           `json:"answer_text,omitempty" bson:"answer_text,omitempty"`
	Marks       int              `json:"marks" bson:"marks"`
	Difficulty  DifficultyLevel  `json:"difficulty" bson:"difficulty"`
	Explanation string           `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Category    QuestionCategory `json:"category" bson:"category"`

	CreatedBy string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (Question) Collection() string {
	return "questions"
}

// CorrectOption returns the answer as stored in Options, or AnswerText
// for types without options.
func (q *Question) CorrectOption() string {
	if len(q.Options) == 0 {
		return q.AnswerText
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.AnswerIndex]
}

func ValidQuestionTypes() []QuestionType {
	return []QuestionType{QuestionMCQ, QuestionTrueFalse, QuestionShortAnswer}
}

func ValidDifficulties() []DifficultyLevel {
	return []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

func ValidCategories() []QuestionCategory {
	return []QuestionCategory{
		CategoryMath, CategoryScience, CategoryEnglish, CategoryHistory,
		CategoryGeography, CategoryComputer, CategoryGeneral,
	}
}
