package forms

import (
	"strings"
	"testing"
)

func TestFilterNameStripsAndCapitalizes(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ashUtosh kuMAr", "Ashutosh Kumar"},
		{"  ravi", "Ravi"},
		{"ravi   kumar", "Ravi Kumar"},
		{"r@vi9 teja!", "Rvi Teja"},
		{"123", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := FilterName(c.in); got != c.want {
			t.Fatalf("FilterName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFilterNameIdempotent(t *testing.T) {
	inputs := []string{"ashUtosh kuMAr", "  a  b  c ", "Asha Verma", "x9y z!", "ravi "}
	for _, in := range inputs {
		once := FilterName(in)
		if twice := FilterName(once); twice != once {
			t.Fatalf("FilterName not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestValidateNameRules(t *testing.T) {
	if msg := ValidateName("Asha Verma"); msg != "" {
		t.Fatalf("valid name rejected: %s", msg)
	}
	cases := []struct{ in, wantFragment string }{
		{"", "required"},
		{"A", "at least 4 characters"},
		{strings.Repeat("a", 21), "not exceed 20"},
		{"Asha9 Verma", "Numbers are not allowed"},
		{"Asha@Verma", "Only letters and spaces"},
		{"Asha  Verma", "consecutive spaces"},
	}
	for _, c := range cases {
		msg := ValidateName(c.in)
		if msg == "" || !strings.Contains(msg, c.wantFragment) {
			t.Fatalf("ValidateName(%q) = %q, want fragment %q", c.in, msg, c.wantFragment)
		}
	}
}

func TestValidateNameSingleMutationInvalidates(t *testing.T) {
	base := "Asha Verma"
	for _, bad := range []byte{'7', '#'} {
		mutated := []byte(base)
		mutated[2] = bad
		if msg := ValidateName(string(mutated)); msg == "" {
			t.Fatalf("mutation %q accepted", string(mutated))
		}
	}
}

func TestNormalizeMobile(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+91 98765-43210", "9198765432"},
		{"98765 43210", "9876543210"},
		{"abc", ""},
		{"987654321012345", "9876543210"},
	}
	for _, c := range cases {
		if got := NormalizeMobile(c.in); got != c.want {
			t.Fatalf("NormalizeMobile(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateMobileCauses(t *testing.T) {
	for _, lead := range []byte{'6', '7', '8', '9'} {
		num := string(lead) + "876543210"
		if msg := ValidateMobile(num, true); msg != "" {
			t.Fatalf("valid mobile %s rejected: %s", num, msg)
		}
	}
	if msg := ValidateMobile("98765", true); !strings.Contains(msg, "must be 10 digits") {
		t.Fatalf("short number: wrong cause %q", msg)
	}
	if msg := ValidateMobile("98765432101", true); !strings.Contains(msg, "cannot exceed 10") {
		t.Fatalf("long number: wrong cause %q", msg)
	}
	if msg := ValidateMobile("5876543210", true); !strings.Contains(msg, "start with 6, 7, 8, or 9") {
		t.Fatalf("bad leading digit: wrong cause %q", msg)
	}
	if msg := ValidateMobile("", false); msg != "" {
		t.Fatalf("empty optional mobile should pass, got %q", msg)
	}
	if msg := ValidateMobile("", true); !strings.Contains(msg, "required") {
		t.Fatalf("empty required mobile: %q", msg)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "ravi.kumar+pg@example.co.in", "X@Y.COM"}
	for _, e := range valid {
		if msg := ValidateEmail(e, true); msg != "" {
			t.Fatalf("valid email %q rejected: %s", e, msg)
		}
	}
	invalid := []struct{ in, fragment string }{
		{"a@b", "valid email"},
		{"a b@c.com", "spaces"},
		{"a..b@c.com", "Consecutive dots"},
		{".ab@c.com", "start or end with a dot"},
		{strings.Repeat("a", 65) + "@c.com", "local part"},
		{"a@" + strings.Repeat("b", 250) + ".com", "too long"},
		{"@c.com", "valid email"},
	}
	for _, c := range invalid {
		msg := ValidateEmail(c.in, true)
		if msg == "" || !strings.Contains(msg, c.fragment) {
			t.Fatalf("ValidateEmail(%q) = %q, want fragment %q", c.in, msg, c.fragment)
		}
	}
}

func TestValidateFieldDispatch(t *testing.T) {
	v, msg := ValidateField(KindName, "Name", "  asha verma")
	if v != "Asha Verma" || msg != "" {
		t.Fatalf("name dispatch: %q / %q", v, msg)
	}
	v, msg = ValidateField(KindPhone, "Phone", "+91 98765 43210 99")
	if v != "9198765432" || msg != "" {
		t.Fatalf("phone dispatch: %q / %q", v, msg)
	}
	if _, msg = ValidateField(KindRequired, "City", "   "); !strings.Contains(msg, "City is required") {
		t.Fatalf("required dispatch: %q", msg)
	}
}
