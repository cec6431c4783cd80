package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/campusops/acerp/core/academic"
	"github.com/campusops/acerp/core/account"
)

type AcademicRepository struct {
	db *DB
}

var _ academic.Repository = (*AcademicRepository)(nil)

func NewAcademicRepository(db *DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

func (repo *AcademicRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedAccountIDs ...int64) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for id, acct := range repo.db.accounts {
		if acct.Email != email {
			continue
		}
		excluded := false
		for _, e := range excludedAccountIDs {
			if e == id {
				excluded = true
			}
		}
		if !excluded {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *AcademicRepository) CheckRollNumberUniqueness(ctx context.Context, roll string, excluded ...academic.Student) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.students {
		if st.RollNumber == roll && !studentExcluded(*st, excluded) {
			return academic.ErrRollNumberExists
		}
	}
	return nil
}

func (repo *AcademicRepository) CreateStudent(ctx context.Context, acct account.Account, st academic.Student) (academic.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.accounts {
		if existing.Email == acct.Email {
			return academic.Student{}, account.ErrEmailExists
		}
	}
	for _, existing := range repo.db.students {
		if existing.RollNumber == st.RollNumber {
			return academic.Student{}, academic.ErrRollNumberExists
		}
	}

	acct.ID = repo.db.nextID()
	repo.db.accounts[acct.ID] = &acct

	st.ID = repo.db.nextID()
	st.AccountID = acct.ID
	st.Account = acct
	repo.db.students[st.ID] = &st
	return st, nil
}

// populate refreshes the embedded account; must be called with the lock held.
func (repo *AcademicRepository) populate(st academic.Student) academic.Student {
	if acct, ok := repo.db.accounts[st.AccountID]; ok {
		st.Account = *acct
	}
	return st
}

func (repo *AcademicRepository) GetStudentByID(ctx context.Context, id int64) (academic.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if st, ok := repo.db.students[id]; ok {
		return repo.populate(*st), nil
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (repo *AcademicRepository) GetStudentByAccountID(ctx context.Context, accountID int64) (academic.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.students {
		if st.AccountID == accountID {
			return repo.populate(*st), nil
		}
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (repo *AcademicRepository) FilterStudents(ctx context.Context, filter academic.QueryFilter) ([]academic.Student, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matched := make([]academic.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		s := repo.populate(*st)
		if filter.Department != "" && !containsFold(s.Department, filter.Department) {
			continue
		}
		if filter.Batch != "" && !containsFold(s.Batch, filter.Batch) {
			continue
		}
		if filter.Name != "" && !containsFold(s.Account.Name, filter.Name) {
			continue
		}
		matched = append(matched, s)
	}

	sort.Slice(matched, func(i, j int) bool {
		less := false
		switch filter.SortBy {
		case "roll_number":
			less = matched[i].RollNumber < matched[j].RollNumber
		case "department":
			less = matched[i].Department < matched[j].Department
		case "batch":
			less = matched[i].Batch < matched[j].Batch
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt) ||
				(matched[i].CreatedAt.Equal(matched[j].CreatedAt) && matched[i].ID < matched[j].ID)
		}
		if filter.SortOrder == "desc" {
			return !less
		}
		return less
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []academic.Student{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (repo *AcademicRepository) UpdateStudent(ctx context.Context, st academic.Student) (academic.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[st.ID]
	if !ok {
		return academic.Student{}, academic.ErrStudentNotFound
	}
	st.AccountID = orig.AccountID
	repo.db.students[st.ID] = &st

	if acct, ok := repo.db.accounts[st.AccountID]; ok {
		acct.Name = st.Account.Name
		acct.Email = st.Account.Email
		acct.UpdatedAt = st.UpdatedAt
		st.Account = *acct
	}
	return st, nil
}

func (repo *AcademicRepository) DeleteStudent(ctx context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	st, ok := repo.db.students[id]
	if !ok {
		return academic.ErrStudentNotFound
	}
	delete(repo.db.accounts, st.AccountID)
	delete(repo.db.students, id)
	return nil
}

func (repo *AcademicRepository) CheckCourseCodeUniqueness(ctx context.Context, code string, excluded ...academic.Course) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.courses {
		if c.Code == code && !courseExcluded(*c, excluded) {
			return academic.ErrCourseCodeExists
		}
	}
	return nil
}

func (repo *AcademicRepository) CreateCourse(ctx context.Context, c academic.Course) (academic.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.courses {
		if existing.Code == c.Code {
			return academic.Course{}, academic.ErrCourseCodeExists
		}
	}
	c.ID = repo.db.nextID()
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *AcademicRepository) QueryAllCourses(ctx context.Context) ([]academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]academic.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *AcademicRepository) GetCourseByID(ctx context.Context, id int64) (academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *AcademicRepository) GetCoursesByFaculty(ctx context.Context, facultyID int64) ([]academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]academic.Course, 0)
	for _, c := range repo.db.courses {
		if c.FacultyID == facultyID {
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *AcademicRepository) UpdateCourse(ctx context.Context, c academic.Course) (academic.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[c.ID]; !ok {
		return academic.Course{}, academic.ErrCourseNotFound
	}
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *AcademicRepository) DeleteCourse(ctx context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return academic.ErrCourseNotFound
	}
	delete(repo.db.courses, id)
	return nil
}

func studentExcluded(st academic.Student, excluded []academic.Student) bool {
	for _, e := range excluded {
		if e.ID == st.ID {
			return true
		}
	}
	return false
}

func courseExcluded(c academic.Course, excluded []academic.Course) bool {
	for _, e := range excluded {
		if e.ID == c.ID {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
