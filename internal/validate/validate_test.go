package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()
	if err == nil {
		return nil
	}
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validate.Errors, got %T: %v", err, err)
	}
	return errs
}

// ============================================================
// Sign up
// ============================================================

func TestSignUpValid(t *testing.T) {
	f := SignUp{Name: "Jane", Email: "jane@example.com", Password: "abc12345!", ConfirmPassword: "abc12345!"}
	if err := f.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestSignUpPasswordRules(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"", "Password is required"},
		{"a1!", "Password must be at least 8 characters"},
		{"abcdefgh!", "Password must include a number"},
		{"12345678!", "Password must include a letter"},
		{"abcd12345", "Password must include a special character"},
		{"abcd1234~", "Password must include a special character"},
		{"abcd1234\"", ""},
		{"abcd1234<", ""},
	}
	for _, tt := range tests {
		f := SignUp{Name: "Jane", Email: "jane@example.com", Password: tt.password, ConfirmPassword: tt.password}
		errs := fieldErrors(t, f.Validate())
		if got := errs.Field("password"); got != tt.want {
			t.Errorf("password %q: got %q, want %q", tt.password, got, tt.want)
		}
	}
}

func TestSignUpEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"xyz@gmail.com", true},
		{"first.last+tag@sub.example.org", true},
		{"no-at-sign.com", false},
		{"two@@example.com", false},
		{"trailing@example.", false},
		{"", false},
	}
	for _, tt := range tests {
		f := SignUp{Name: "Jane", Email: tt.email, Password: "abc12345!", ConfirmPassword: "abc12345!"}
		errs := fieldErrors(t, f.Validate())
		if ok := errs.Field("email") == ""; ok != tt.ok {
			t.Errorf("email %q: valid=%v, want %v (%q)", tt.email, ok, tt.ok, errs.Field("email"))
		}
	}
}

func TestSignUpConfirmMustMatchExactly(t *testing.T) {
	f := SignUp{Name: "Jane", Email: "jane@example.com", Password: "abc12345!", ConfirmPassword: "abc12345! "}
	errs := fieldErrors(t, f.Validate())
	if errs.Field("confirmPassword") != "Passwords should match" {
		t.Fatalf("got %v", errs)
	}
}

func TestSignUpShortName(t *testing.T) {
	f := SignUp{Name: "Jo", Email: "jo@example.com", Password: "abc12345!", ConfirmPassword: "abc12345!"}
	errs := fieldErrors(t, f.Validate())
	if errs.Field("name") != "Name must be at least 3 characters long" {
		t.Fatalf("got %v", errs)
	}
	if len(errs) != 1 {
		t.Fatalf("only name should fail, got %v", errs)
	}
}

// ============================================================
// Entry forms
// ============================================================

func TestLoginValidate(t *testing.T) {
	tests := []struct {
		name string
		form Login
		want Errors
	}{
		{
			name: "empty",
			form: Login{},
			want: Errors{"email": "Email is required", "password": "Password is required"},
		},
		{
			name: "malformed email",
			form: Login{Email: "not-an-email", Password: "abc12345!"},
			want: Errors{"email": "Invalid email address"},
		},
		{
			name: "weak password",
			form: Login{Email: "a@b.co", Password: "x"},
			want: Errors{"password": "Password must be at least 8 characters"},
		},
		{
			name: "quote is not a login symbol",
			form: Login{Email: "a@b.co", Password: `abc12345"`},
			want: Errors{"password": "Password must include a special character"},
		},
		{
			name: "valid",
			form: Login{Email: "a@b.co", Password: "abc12345!"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if diff := cmp.Diff(tt.want, fieldErrors(t, err)); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuoteSymbolSetsDiffer(t *testing.T) {
	pw := `abc12345"`
	if msg := first(pw, PasswordRules); msg != "" {
		t.Fatalf("sign-up rules should accept a quote as the symbol, got %q", msg)
	}
	if msg := first(pw, LoginPasswordRules); msg == "" {
		t.Fatal("login rules should not count a quote as a symbol")
	}
}

func TestCategoryName(t *testing.T) {
	if err := CategoryName("  "); err == nil {
		t.Fatal("blank category name should fail")
	}
	if err := CategoryName("Home"); err != nil {
		t.Fatal(err)
	}
}

func TestTaskForm(t *testing.T) {
	valid := Task{Task: "Buy milk", Date: "2024-01-01", Time: "10:00", CategoryID: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	errs := fieldErrors(t, Task{}.Validate())
	for _, f := range []string{"task", "date", "time", "category_id"} {
		if errs.Field(f) == "" {
			t.Errorf("expected error for %s", f)
		}
	}

	bad := Task{Task: "x", Date: "01/02/2024", Time: "10am", CategoryID: 1}
	errs = fieldErrors(t, bad.Validate())
	if errs.Field("date") == "" || errs.Field("time") == "" {
		t.Fatalf("expected layout errors, got %v", errs)
	}
}

func TestErrorsMessageIsStable(t *testing.T) {
	errs := Errors{"time": "b", "date": "a"}
	if errs.Error() != "date: a; time: b" {
		t.Fatalf("got %q", errs.Error())
	}
}

func TestFuncAdapter(t *testing.T) {
	fn := Func(PasswordRules...)
	if err := fn("short"); err == nil || err.Error() != "Password must be at least 8 characters" {
		t.Fatalf("got %v", err)
	}
	if err := fn("abc12345!"); err != nil {
		t.Fatal(err)
	}
}
