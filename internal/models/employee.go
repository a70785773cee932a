package models

// Employee represents a row of the employees_info table.
type Employee struct {
	UID            int     `json:"uid"`
	Name           string  `json:"name"`
	CurrentSalary  float64 `json:"currentSalary"`
	AverageExpense float64 `json:"averageExpense"`
	MobileNo       string  `json:"mobileNo"`
}

// NewEmployee represents a row of the new_employees table.
type NewEmployee struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// FlagReason is a tag explaining why an employee was selected for review.
type FlagReason string

const (
	ReasonSalaryBelowExpense FlagReason = "salary_below_expense"
	ReasonInvalidPhone       FlagReason = "invalid_phone"
)

// Description returns the human readable text written to the flagged employees file.
func (r FlagReason) Description() string {
	switch r {
	case ReasonSalaryBelowExpense:
		return "Salary less than expenses"
	case ReasonInvalidPhone:
		return "Invalid phone number"
	default:
		return string(r)
	}
}

// FlaggedEmployee is an employee with at least one flag reason.
type FlaggedEmployee struct {
	UID     int          `json:"uid"`
	Name    string       `json:"name"`
	Reasons []FlagReason `json:"reasons"`
}
