package verify

import "testing"

func TestCorrectTypos(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"서울대 약차과", "서울대 약학과"},
		{"양한대 재학중", "약학대학 재학중"},
		{"약학대 3학년", "약학대학 3학년"},
		{"약학대학", "약학대학"},
		{"깨끗한 텍스트", "깨끗한 텍스트"},
	}
	for _, tt := range tests {
		if got := CorrectTypos(tt.in); got != tt.want {
			t.Errorf("CorrectTypos(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsLikelyStudentCard(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"서울대학교 학생증", true},
		{"student id card", true},
		{"STUDENT", true},
		{"면허증 보건복지부", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsLikelyStudentCard(tt.in); got != tt.want {
			t.Errorf("IsLikelyStudentCard(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHasPharmacyMajor(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"약학과 재학", true},
		{"College of pharmacy", true},
		{"약차과", true}, // typo corrected before matching
		{"경영학과", false},
	}
	for _, tt := range tests {
		if got := HasPharmacyMajor(tt.in); got != tt.want {
			t.Errorf("HasPharmacyMajor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCountContained(t *testing.T) {
	text := "약사법 제3조에 따라 보건복지부 장관"
	if got := countContained(text, LicenseNiceKeywords); got != 3 {
		t.Errorf("countContained() = %d, want 3", got)
	}
	if !containsAll("면허증 보건복지부", LicenseRequiredKeywords) {
		t.Error("containsAll() should pass with both required keywords")
	}
	if containsAll("면허증만 있음", LicenseRequiredKeywords) {
		t.Error("containsAll() should fail with a missing keyword")
	}
}
