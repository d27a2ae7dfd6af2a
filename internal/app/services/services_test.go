package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  any
		isSet bool
	}{
		{"nil", nil, nil, false},
		{"empty string", "", nil, false},
		{"string", "SCI", "SCI", true},
		{"nil string pointer", (*string)(nil), nil, false},
		{"empty string pointer", ptr(""), nil, false},
		{"string pointer", ptr("a@b.c"), "a@b.c", true},
		{"nil id", (*int64)(nil), nil, false},
		{"id", ptr(int64(4)), int64(4), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := present(tt.in)
			assert.Equal(t, tt.isSet, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCheckDuplicates_ReportsEveryConflict(t *testing.T) {
	repo := newFakeDepartments()
	repo.put(&models.Department{Name: "Science", Code: "SCI"})

	err := checkDuplicates(context.Background(), repo, "department", 0,
		unique("name", "name", "science"),
		unique("code", "code", "SCI"),
	)

	var dup *apperrors.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, map[string]string{
		"name": "A department with this name already exists",
		"code": "A department with this code already exists",
	}, dup.Fields)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))
}

func TestCheckDuplicates_ExcludesSelf(t *testing.T) {
	repo := newFakeDepartments()
	d := repo.put(&models.Department{Name: "Science", Code: "SCI"})

	err := checkDuplicates(context.Background(), repo, "department", d.ID,
		unique("name", "name", "Science"), unique("code", "code", "SCI"))
	assert.NoError(t, err)
}

func TestCheckReferences(t *testing.T) {
	teachers := newFakeTeachers()
	tch := teachers.put(&models.Teacher{EmployeeID: "T1"})
	ctx := context.Background()

	assert.NoError(t, checkReferences(ctx, ref("headTeacherId", "head teacher", nil, teachers)))
	assert.NoError(t, checkReferences(ctx, ref("headTeacherId", "head teacher", &tch.ID, teachers)))

	err := checkReferences(ctx, ref("headTeacherId", "head teacher", ptr(int64(99)), teachers))
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "headTeacherId", ce.Field)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidReference))
}

func TestRecordService_ListAndBulkDelete(t *testing.T) {
	repo := newFakeDepartments()
	for _, code := range []string{"SCI", "ART", "BUS"} {
		repo.put(&models.Department{Name: code, Code: code})
	}
	svc := NewDepartmentService(repo, newFakeTeachers(), 100)
	ctx := context.Background()

	page, err := svc.List(ctx, dto.DepartmentListQuery{ListQuery: dto.ListQuery{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	_, err = svc.BulkDelete(ctx, []int64{1, 42})
	var missing *apperrors.MissingIDsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []int64{42}, missing.IDs)
	assert.Len(t, repo.items, 3, "nothing is deleted when an id is missing")

	resp, err := svc.BulkDelete(ctx, []int64{1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, repo.items, 1)
}

func TestRecordService_Export(t *testing.T) {
	repo := newFakeDepartments()
	repo.put(&models.Department{Name: "Science", Code: "SCI"})
	repo.put(&models.Department{Name: "Arts", Code: "ART"})
	svc := NewDepartmentService(repo, newFakeTeachers(), 1)

	table, err := svc.Export(context.Background(), dto.DepartmentListQuery{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1, "export is capped at the limit")
	assert.Equal(t, "Name", table.Headers[1])
}

func TestDepartmentService_CreateAndUpdate(t *testing.T) {
	repo := newFakeDepartments()
	teachers := newFakeTeachers()
	head := teachers.put(&models.Teacher{EmployeeID: "T1"})
	svc := NewDepartmentService(repo, teachers, 100)
	ctx := context.Background()

	d, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "  Science ", Code: "SCI", HeadTeacherID: &head.ID})
	require.NoError(t, err)
	assert.Equal(t, "Science", d.Name)
	assert.NotZero(t, d.ID)

	_, err = svc.Create(ctx, &dto.DepartmentRequest{Name: "Science", Code: "SCI2"})
	var dup *apperrors.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Contains(t, dup.Fields, "name")
	assert.NotContains(t, dup.Fields, "code")

	_, err = svc.Create(ctx, &dto.DepartmentRequest{Name: "Arts", Code: "ART", HeadTeacherID: ptr(int64(77))})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidReference))

	updated, err := svc.Update(ctx, d.ID, &dto.DepartmentRequest{Name: "Science", Code: "SCI", Description: "Labs"})
	require.NoError(t, err)
	assert.Equal(t, "Labs", updated.Description)

	_, err = svc.Update(ctx, 999, &dto.DepartmentRequest{Name: "X", Code: "XX"})
	assert.True(t, errors.Is(err, apperrors.ErrDepartmentNotFound))
}

func TestDepartmentService_StaleUpdate(t *testing.T) {
	repo := newFakeDepartments()
	svc := NewDepartmentService(repo, newFakeTeachers(), 100)
	ctx := context.Background()

	d, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Science", Code: "SCI"})
	require.NoError(t, err)
	seen := repo.items[d.ID].UpdatedAt

	req := &dto.DepartmentRequest{Name: "Science", Code: "SCI", Description: "first"}
	req.ExpectedUpdatedAt = &seen
	_, err = svc.Update(ctx, d.ID, req)
	require.NoError(t, err)

	req.Description = "second"
	_, err = svc.Update(ctx, d.ID, req)
	assert.True(t, errors.Is(err, apperrors.ErrStaleRecord))
	assert.Equal(t, "first", repo.items[d.ID].Description)
}

func TestClassService_CapacityBelowEnrolment(t *testing.T) {
	classes := newFakeClasses()
	svc := NewClassService(classes, newFakeDepartments(), newFakeTeachers(), 100)
	ctx := context.Background()

	c, err := svc.Create(ctx, &dto.ClassRequest{Name: "Form 1 A", Code: "1a", Level: 1, Capacity: ptr(40)})
	require.NoError(t, err)
	assert.Equal(t, "1A", c.Code)

	classes.enrolled[c.ID] = 30
	_, err = svc.Update(ctx, c.ID, &dto.ClassRequest{Name: "Form 1 A", Code: "1A", Level: 1, Capacity: ptr(20)})
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "capacity", ce.Field)

	_, err = svc.Update(ctx, c.ID, &dto.ClassRequest{Name: "Form 1 A", Code: "1A", Level: 1, Capacity: ptr(30)})
	assert.NoError(t, err)
}

func TestCourseService_Assignments(t *testing.T) {
	teachers := newFakeTeachers()
	classes := newFakeClasses()
	t1 := teachers.put(&models.Teacher{EmployeeID: "T1"})
	c1 := classes.put(&models.Class{Name: "1A", Code: "1A"})
	svc := NewCourseService(newFakeCourses(), newFakeDepartments(), teachers, classes, 100)
	ctx := context.Background()

	course, err := svc.Create(ctx, &dto.CourseRequest{
		Code: "math101", Title: "Core Mathematics", CreditHours: 4,
		TeacherIDs: []int64{t1.ID, t1.ID}, ClassIDs: []int64{c1.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", course.Code)
	assert.Equal(t, []int64{t1.ID}, course.TeacherIDs)

	_, err = svc.Create(ctx, &dto.CourseRequest{Code: "ENG", Title: "English", TeacherIDs: []int64{55}})
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "teacherIds", ce.Field)

	_, err = svc.Create(ctx, &dto.CourseRequest{Code: "MATH101", Title: "Core Mathematics"})
	var dup *apperrors.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Len(t, dup.Fields, 2)
}

func TestTeacherAndStaffNormalisation(t *testing.T) {
	ctx := context.Background()
	teachers := NewTeacherService(newFakeTeachers(), newFakeDepartments(), newFakeUsers(), 100)

	tch, err := teachers.Create(ctx, &dto.TeacherRequest{
		EmployeeID: "tch01", FirstName: "Kwame", LastName: "Asante", Email: " K.Asante@School.edu ",
		Phone: ptr("  "), Gender: models.GenderMale, HireDate: ptr("2019-01-07"),
	})
	require.NoError(t, err)
	assert.Equal(t, "TCH01", tch.EmployeeID)
	assert.Equal(t, "k.asante@school.edu", tch.Email)
	assert.Nil(t, tch.Phone)
	assert.Equal(t, models.EmploymentActive, tch.Status)
	require.NotNil(t, tch.HireDate)
	assert.Equal(t, 2019, tch.HireDate.Year())

	_, err = teachers.Create(ctx, &dto.TeacherRequest{
		EmployeeID: "TCH02", FirstName: "A", LastName: "B", Email: "k.asante@school.edu", Gender: models.GenderFemale,
	})
	var dup *apperrors.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []string{"email"}, keys(dup.Fields))

	staff := NewStaffService(newFakeStaff(), newFakeDepartments(), newFakeUsers(), 100)
	_, err = staff.Create(ctx, &dto.StaffRequest{
		EmployeeID: "STF01", FirstName: "Efua", LastName: "Ofori", Email: "efua@school.edu",
		Gender: models.GenderFemale, Position: "Bursar", HireDate: ptr("07/01/2019"),
	})
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "hireDate", ce.Field)
}

func TestDashboardService_FillsStatuses(t *testing.T) {
	svc := NewDashboardService(statsFunc(func(context.Context) (*dto.DashboardStats, error) {
		return &dto.DashboardStats{Students: 3, StudentsByStatus: map[string]int64{"ACTIVE": 3}}, nil
	}))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.StudentsByStatus["ACTIVE"])
	assert.Contains(t, stats.StudentsByStatus, "GRADUATED")
	assert.Len(t, stats.StudentsByStatus, 4)
}

type statsFunc func(context.Context) (*dto.DashboardStats, error)

func (f statsFunc) Stats(ctx context.Context) (*dto.DashboardStats, error) { return f(ctx) }

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
