package env

import "testing"

func TestString(t *testing.T) {
	t.Setenv("BINWALK_TEST_STR", "value")

	if got := String("BINWALK_TEST_STR", "fallback"); got != "value" {
		t.Errorf("String = %q, want value", got)
	}
	if got := String("BINWALK_TEST_STR_UNSET", "fallback"); got != "fallback" {
		t.Errorf("String = %q, want fallback", got)
	}

	t.Setenv("BINWALK_TEST_STR", "")
	if got := String("BINWALK_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("String with empty value = %q, want fallback", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("BINWALK_TEST_INT", "42")

	if got := Int("BINWALK_TEST_INT", 7); got != 42 {
		t.Errorf("Int = %d, want 42", got)
	}
	if got := Int("BINWALK_TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("Int = %d, want fallback 7", got)
	}

	t.Setenv("BINWALK_TEST_INT", "not-a-number")
	if got := Int("BINWALK_TEST_INT", 7); got != 7 {
		t.Errorf("Int with garbage value = %d, want fallback 7", got)
	}
}
