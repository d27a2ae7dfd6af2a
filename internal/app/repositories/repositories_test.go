package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/indexnumber"
)

var testIndex = indexnumber.New("NPR", 4)

var sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func TestListOptions_SearchAndSort(t *testing.T) {
	o := newListOptions(dto.ListQuery{Search: "50%_off", SortBy: "code", SortOrder: "desc"},
		departmentSorts, "name", "name", "code")

	sql, args, err := o.order(o.where(sb.Select("id").From("departments")), "id").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM departments WHERE (name ILIKE $1 OR code ILIKE $2) ORDER BY code DESC, id DESC", sql)
	assert.Equal(t, []interface{}{`%50\%\_off%`, `%50\%\_off%`}, args)
}

func TestListOptions_UnknownSortFallsBack(t *testing.T) {
	o := newListOptions(dto.ListQuery{SortBy: "password; DROP TABLE users"}, departmentSorts, "name")

	sql, _, err := o.order(sb.Select("id").From("departments"), "id").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM departments ORDER BY name ASC, id ASC", sql)
}

func TestStudentListOptions_Filters(t *testing.T) {
	classID := int64(4)
	year := 2024
	r := NewStudentRepository(nil, testIndex)
	o := r.listOptions(dto.StudentListQuery{ClassID: &classID, Status: "ACTIVE", AdmissionYear: &year})

	sql, args, err := o.where(sb.Select("id").From("students")).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM students WHERE (class_id = $1 AND status = $2 AND admission_date >= $3 AND admission_date < $4)", sql)
	require.Len(t, args, 4)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), args[2])
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), args[3])
}

func TestCourseListOptions_TeacherFilter(t *testing.T) {
	teacherID := int64(9)
	r := NewCourseRepository(nil)
	o := r.listOptions(dto.CourseListQuery{TeacherID: &teacherID})

	sql, args, err := o.where(sb.Select("id").From("courses")).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "EXISTS (SELECT 1 FROM course_teachers ct WHERE ct.course_id = courses.id AND ct.teacher_id = $1)")
	assert.Equal(t, []interface{}{int64(9)}, args)
}

func TestListOptions_Page(t *testing.T) {
	var o listOptions
	o.page(dto.ListQuery{Page: 3, PageSize: 25})
	assert.Equal(t, uint64(50), o.Offset)
	assert.Equal(t, uint64(25), o.Limit)
}

func TestVersionCond(t *testing.T) {
	sql, args, err := versionCond(5, nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "id = ?", sql)
	assert.Equal(t, []interface{}{int64(5)}, args)

	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	sql, args, err = versionCond(5, &at).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "id = ? AND updated_at = ?", sql)
	assert.Equal(t, []interface{}{int64(5), at}, args)
}

func TestMissingIDs(t *testing.T) {
	assert.Equal(t, []int64{2, 7}, missingIDs([]int64{1, 2, 3, 7}, []int64{3, 1}))
	assert.Empty(t, missingIDs([]int64{1}, []int64{1}))
}

func TestExistsBy_UnknownField(t *testing.T) {
	r := NewDepartmentRepository(nil)
	_, err := r.ExistsBy(context.Background(), "headTeacherId", 1, 0)
	assert.Error(t, err)
}

func TestQualify(t *testing.T) {
	assert.Equal(t, []string{"u.id", "u.email"}, qualify("u", []string{"id", "email"}))
	assert.Equal(t, "id, email", joinColumns([]string{"id", "email"}))
}
