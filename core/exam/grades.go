package exam

import "fmt"

// gradeBands maps a percentage to a letter grade. Bands are evaluated in
// descending order and are inclusive on their lower bound.
var gradeBands = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "C+"},
	{60, "C"},
	{50, "D"},
}

var gradePoints = map[string]float64{
	"A+": 4.0, "A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0, "F": 0.0,
}

// Grade computes the letter grade for marks obtained out of a total.
func Grade(marksObtained, totalMarks float64) string {
	percentage := marksObtained / totalMarks * 100
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.grade
		}
	}
	return "F"
}

// GPA computes the credit-weighted grade point average of a result history,
// formatted to two decimals. Results whose exam or course is unknown, or
// whose course carries zero credits, are excluded from both numerator and
// denominator. An empty history yields "0.00".
func GPA(results []Result) string {
	var totalPoints, totalCredits float64
	for _, res := range results {
		if res.Exam == nil || res.Exam.Course == nil {
			continue
		}
		credits := float64(res.Exam.Course.Credits)
		if credits <= 0 {
			continue
		}
		totalPoints += gradePoints[res.Grade] * credits
		totalCredits += credits
	}
	if totalCredits == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", totalPoints/totalCredits)
}
