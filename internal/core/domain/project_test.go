package domain

import (
	"strings"
	"testing"
)

func TestValidProjectName(t *testing.T) {
	valid := []string{
		"a",
		"my-app",
		"api2",
		"0start",
		strings.Repeat("a", 63),
	}
	for _, name := range valid {
		if !ValidProjectName(name) {
			t.Errorf("ValidProjectName(%q) = false, want true", name)
		}
	}

	invalid := []string{
		"",
		"-leading",
		"trailing-",
		"UPPER",
		"under_score",
		"dots.are.out",
		strings.Repeat("a", 64),
	}
	for _, name := range invalid {
		if ValidProjectName(name) {
			t.Errorf("ValidProjectName(%q) = true, want false", name)
		}
	}
}
