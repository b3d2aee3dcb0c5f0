package verify

import "testing"

func TestExtractStudentName(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "short standalone line wins",
			lines: []string{"서울대학교 학생증", "약학과", "홍길동"},
			want:  "홍길동",
		},
		{
			name:  "institutional line penalized",
			lines: []string{"총장 김총장", "홍길동"},
			want:  "홍길동",
		},
		{
			name:  "nothing extractable",
			lines: []string{"서울대학교", "학생증"},
			want:  "",
		},
		{
			name:  "empty input",
			lines: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractStudentName(tt.lines); got != tt.want {
				t.Errorf("ExtractStudentName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractStudentID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// Exact substitution table: O->0, I->1, L->1, B->8, S->5, Z->2.
		{"학번 2O2II23456", "2021123456"},
		{"2021123456", "2021123456"},
		{"20 21 12 34 56", "2021123456"},
		{"2021123456에", "2021123456"},
		{"2oz1123456", "2021123456"}, // lowercased input is uppercased first
		{"1999123456", ""},           // must start with a 20xx prefix
		{"학번 없음", ""},
	}
	for _, tt := range tests {
		if got := ExtractStudentID(tt.in); got != tt.want {
			t.Errorf("ExtractStudentID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractUniversity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"서울대학교 약학대학", "서울대학교"},
		{"SEOUL NATIONAL UNIVERSITY", "NATIONAL UNIVERSITY"},
		{"약학과 홍길동", ""},
	}
	for _, tt := range tests {
		if got := ExtractUniversity(tt.in); got != tt.want {
			t.Errorf("ExtractUniversity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractDepartment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pharmacy department beats others", "경영학과 한약학과", "한약학과"},
		{"specific suffix beats broad one", "약학대학 제약학과", "제약학과"},
		{"short name needs the keyword fallback", "약학과", "약학과"},
		{"candidate beats keyword fallback", "서울대학교 약학과", "서울대학"},
		{"typo corrected first", "약차과 재학생", "약학과"},
		{"english college of pharmacy", "College of Pharmacy", "약학대학"},
		{"english graduate school", "Graduate School of Pharmacy", "약학대학원"},
		{"bare pharmacy word", "PHARMACY", "약학과"},
		{"no department", "학생증 홍길동", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDepartment(tt.in); got != tt.want {
				t.Errorf("ExtractDepartment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractStudentFields(t *testing.T) {
	lines := []string{
		"서울대학교 학생증",
		"약학대학 약학과",
		"홍길동",
		"학번 2021123456",
	}
	fields := extractStudentFields(lines)

	want := Fields{
		FieldName:       "홍길동",
		FieldStudentID:  "2021123456",
		FieldUniversity: "서울대학교",
		FieldDepartment: "약학대학",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%s] = %q, want %q", k, fields[k], v)
		}
	}
}
