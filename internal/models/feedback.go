package models

// Feedback represents a row of the employee_feedback table.
type Feedback struct {
	ID   int    `json:"id"`
	Text string `json:"feedback"`
}

// FeedbackMatch is a feedback record together with the slang words found in it.
type FeedbackMatch struct {
	ID       int      `json:"id"`
	Feedback string   `json:"feedback"`
	Slangs   []string `json:"slangs"`
}
