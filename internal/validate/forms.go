package validate

import (
	"strconv"
	"strings"

	"github.com/sadopc/taskhub/internal/model"
)

// Field-level rule sets, shared by Check and the interactive forms.
var (
	SignUpNameRules = []Rule{
		Required("Name is required"),
		MinLen(3, "Name must be at least 3 characters long"),
	}
	EmailRules = []Rule{
		Required("Email is required"),
		Email("Invalid email address"),
	}
	PasswordRules = []Rule{
		Required("Password is required"),
		MinLen(8, "Password must be at least 8 characters"),
		Match(digitRe, "Password must include a number"),
		Match(letterRe, "Password must include a letter"),
		Match(symbolRe, "Password must include a special character"),
	}
	LoginPasswordRules = []Rule{
		Required("Password is required"),
		MinLen(8, "Password must be at least 8 characters"),
		Match(digitRe, "Password must include a number"),
		Match(letterRe, "Password must include a letter"),
		Match(loginSymbolRe, "Password must include a special character"),
	}
	CategoryNameRules = []Rule{
		Required("Category name is required"),
	}
	TaskTextRules = []Rule{
		Required("Task description is required"),
	}
	TaskDateRules = []Rule{
		Required("Date is required"),
		Layout(model.DateLayout, "Date must look like YYYY-MM-DD"),
	}
	TaskTimeRules = []Rule{
		Required("Time is required"),
		Layout(model.TimeLayout, "Time must look like HH:MM"),
	}
	CategoryChoiceRules = []Rule{
		Required("Category is required"),
	}
)

type SignUp struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (f SignUp) Validate() error {
	return Check(
		Field{Name: "name", Value: f.Name, Rules: SignUpNameRules},
		Field{Name: "email", Value: f.Email, Rules: EmailRules},
		Field{Name: "password", Value: f.Password, Rules: PasswordRules},
		Field{Name: "confirmPassword", Value: f.ConfirmPassword, Rules: ConfirmRules(func() string { return f.Password })},
	)
}

// ConfirmRules requires the confirmation to equal password() exactly.
func ConfirmRules(password func() string) []Rule {
	return []Rule{
		Required("Confirm password is required"),
		Equals(password, "Passwords should match"),
	}
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f Login) Validate() error {
	return Check(
		Field{Name: "email", Value: f.Email, Rules: EmailRules},
		Field{Name: "password", Value: f.Password, Rules: LoginPasswordRules},
	)
}

// CategoryName validates the add-category input.
func CategoryName(name string) error {
	return Check(Field{Name: "name", Value: name, Rules: CategoryNameRules})
}

// Task is the add/edit task form. CategoryID is zero until one is picked.
type Task struct {
	Task       string
	Date       string
	Time       string
	CategoryID int64
}

func (f Task) Validate() error {
	return Check(
		Field{Name: "task", Value: f.Task, Rules: TaskTextRules},
		Field{Name: "date", Value: f.Date, Rules: TaskDateRules},
		Field{Name: "time", Value: f.Time, Rules: TaskTimeRules},
		Field{Name: "category_id", Value: categoryChoice(f.CategoryID), Rules: CategoryChoiceRules},
	)
}

// Normalized trims the free-text fields.
func (f Task) Normalized() Task {
	f.Task = strings.TrimSpace(f.Task)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	return f
}

func categoryChoice(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
