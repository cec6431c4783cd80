package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusops/acerp/core/academic"
)

func Test_Grade(t *testing.T) {
	tests := []struct {
		name          string
		marksObtained float64
		totalMarks    float64
		want          string
	}{
		{name: "full marks", marksObtained: 100, totalMarks: 100, want: "A+"},
		{name: "exactly 90", marksObtained: 90, totalMarks: 100, want: "A+"},
		{name: "just below 90", marksObtained: 89.9, totalMarks: 100, want: "A"},
		{name: "exactly 85", marksObtained: 85, totalMarks: 100, want: "A"},
		{name: "exactly 80", marksObtained: 80, totalMarks: 100, want: "A-"},
		{name: "exactly 75", marksObtained: 75, totalMarks: 100, want: "B+"},
		{name: "exactly 70", marksObtained: 70, totalMarks: 100, want: "B"},
		{name: "exactly 65", marksObtained: 65, totalMarks: 100, want: "C+"},
		{name: "exactly 60", marksObtained: 60, totalMarks: 100, want: "C"},
		{name: "exactly 50", marksObtained: 50, totalMarks: 100, want: "D"},
		{name: "just below 50", marksObtained: 49.9, totalMarks: 100, want: "F"},
		{name: "zero marks", marksObtained: 0, totalMarks: 100, want: "F"},
		{name: "scaled total", marksObtained: 46, totalMarks: 50, want: "A+"},
		{name: "scaled total low", marksObtained: 20, totalMarks: 50, want: "F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.marksObtained, tt.totalMarks))
		})
	}
}

func Test_GPA(t *testing.T) {
	result := func(grade string, credits int) Result {
		return Result{
			Grade: grade,
			Exam:  &Exam{Course: &academic.Course{Credits: credits}},
		}
	}

	tests := []struct {
		name    string
		results []Result
		want    string
	}{
		{name: "empty history", results: nil, want: "0.00"},
		{name: "single A+", results: []Result{result("A+", 4)}, want: "4.00"},
		{
			name:    "credit weighted",
			results: []Result{result("A", 3), result("B", 3)},
			want:    "3.50",
		},
		{
			name:    "heavier course dominates",
			results: []Result{result("A+", 4), result("C", 1)},
			want:    "3.60",
		},
		{
			name:    "zero-credit course excluded",
			results: []Result{result("A+", 4), result("F", 0)},
			want:    "4.00",
		},
		{
			name:    "unpopulated exam excluded",
			results: []Result{{Grade: "A+"}, result("B", 2)},
			want:    "3.00",
		},
		{name: "all failed", results: []Result{result("F", 3), result("F", 3)}, want: "0.00"},
		{name: "only zero-credit courses", results: []Result{result("A", 0)}, want: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GPA(tt.results))
		})
	}
}
