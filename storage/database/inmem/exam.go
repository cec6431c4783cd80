package inmemdb

import (
	"context"
	"sort"

	"github.com/campusops/acerp/core/exam"
)

type ExamRepository struct {
	db *DB
}

var _ exam.Repository = (*ExamRepository)(nil)

func NewExamRepository(db *DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (repo *ExamRepository) CreateExam(ctx context.Context, e exam.Exam) (exam.Exam, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = repo.db.nextID()
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *ExamRepository) GetExamByID(ctx context.Context, id int64) (exam.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.exams[id]; ok {
		return *e, nil
	}
	return exam.Exam{}, exam.ErrExamNotFound
}

func (repo *ExamRepository) QueryAllExams(ctx context.Context) ([]exam.Exam, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.exams))
	for _, e := range repo.db.exams {
		copied := *e
		if c, ok := repo.db.courses[e.CourseID]; ok {
			course := *c
			copied.Course = &course
		}
		for _, r := range repo.db.results {
			if r.ExamID == e.ID {
				copied.ResultCount++
			}
		}
		exams = append(exams, copied)
	}
	sort.Slice(exams, func(i, j int) bool {
		if !exams[i].Date.Equal(exams[j].Date) {
			return exams[i].Date.After(exams[j].Date)
		}
		return exams[i].ID < exams[j].ID
	})
	return exams, nil
}

func (repo *ExamRepository) UpsertResult(ctx context.Context, r exam.Result) (exam.Result, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.results {
		if existing.ExamID == r.ExamID && existing.StudentID == r.StudentID {
			r.ID = existing.ID
			r.CreatedAt = existing.CreatedAt
			repo.db.results[r.ID] = &r
			return r, nil
		}
	}
	r.ID = repo.db.nextID()
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *ExamRepository) ResultsForStudent(ctx context.Context, studentID int64) ([]exam.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]exam.Result, 0)
	for _, r := range repo.db.results {
		if r.StudentID != studentID {
			continue
		}
		copied := *r
		if e, ok := repo.db.exams[r.ExamID]; ok {
			ex := *e
			if c, ok := repo.db.courses[e.CourseID]; ok {
				course := *c
				ex.Course = &course
			}
			copied.Exam = &ex
		}
		results = append(results, copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (repo *ExamRepository) ResultsForExam(ctx context.Context, examID int64) ([]exam.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]exam.Result, 0)
	for _, r := range repo.db.results {
		if r.ExamID != examID {
			continue
		}
		copied := *r
		if st, ok := repo.db.students[r.StudentID]; ok {
			s := *st
			if acct, ok := repo.db.accounts[s.AccountID]; ok {
				s.Account = *acct
			}
			copied.Student = &s
		}
		results = append(results, copied)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Student != nil && results[j].Student != nil {
			return results[i].Student.RollNumber < results[j].Student.RollNumber
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}
