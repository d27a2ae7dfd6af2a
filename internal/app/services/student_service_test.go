package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

type studentFixture struct {
	students *fakeStudents
	classes  *fakeClasses
	svc      *StudentService
}

func newStudentFixture() *studentFixture {
	f := &studentFixture{students: newFakeStudents(), classes: newFakeClasses()}
	f.svc = NewStudentService(f.students, f.classes, newFakeDepartments(), newFakeUsers(), 100)
	return f
}

func studentRequest(first, last string) *dto.StudentRequest {
	return &dto.StudentRequest{
		FirstName:     first,
		LastName:      last,
		Gender:        models.GenderFemale,
		AdmissionDate: "2025-09-01",
	}
}

func TestStudentService_CreateGeneratesIndexNumber(t *testing.T) {
	f := newStudentFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, studentRequest("Ama", "Mensah"))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, studentRequest("Akos", "Boateng"))
	require.NoError(t, err)

	assert.Equal(t, "NPR250001", first.IndexNumber)
	assert.Equal(t, "NPR250002", second.IndexNumber)
	assert.Equal(t, models.StudentActive, first.Status)
}

func TestStudentService_CreateNormalises(t *testing.T) {
	f := newStudentFixture()
	req := studentRequest(" Ama ", "Mensah")
	req.IndexNumber = "npr240099"
	req.Email = ptr(" Ama.Mensah@Example.com")
	req.Phone = ptr("")
	req.DateOfBirth = ptr("2009-03-14")

	st, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "NPR240099", st.IndexNumber)
	assert.Equal(t, "Ama", st.FirstName)
	require.NotNil(t, st.Email)
	assert.Equal(t, "ama.mensah@example.com", *st.Email)
	assert.Nil(t, st.Phone)
	require.NotNil(t, st.DateOfBirth)
	assert.Equal(t, "2009-03-14", st.DateOfBirth.Format("2006-01-02"))
}

func TestStudentService_CreateRejects(t *testing.T) {
	f := newStudentFixture()
	ctx := context.Background()

	existing := studentRequest("Ama", "Mensah")
	existing.Email = ptr("ama@example.com")
	existing.Phone = ptr("0244000000")
	_, err := f.svc.Create(ctx, existing)
	require.NoError(t, err)

	tests := []struct {
		name  string
		edit  func(*dto.StudentRequest)
		field string
		is    error
	}{
		{"duplicate email ignoring case", func(r *dto.StudentRequest) { r.Email = ptr("AMA@example.com") }, "email", apperrors.ErrResourceAlreadyExists},
		{"duplicate phone", func(r *dto.StudentRequest) { r.Phone = ptr("0244000000") }, "phone", apperrors.ErrResourceAlreadyExists},
		{"duplicate index number", func(r *dto.StudentRequest) { r.IndexNumber = "NPR250001" }, "indexNumber", apperrors.ErrResourceAlreadyExists},
		{"born after admission", func(r *dto.StudentRequest) { r.DateOfBirth = ptr("2026-01-01") }, "dateOfBirth", apperrors.ErrValidationFailed},
		{"bad admission date", func(r *dto.StudentRequest) { r.AdmissionDate = "01/09/2025" }, "admissionDate", apperrors.ErrValidationFailed},
		{"unknown class", func(r *dto.StudentRequest) { r.ClassID = ptr(int64(12)) }, "classId", apperrors.ErrInvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := studentRequest("Kofi", "Owusu")
			tt.edit(req)

			_, err := f.svc.Create(ctx, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)

			var dup *apperrors.DuplicateError
			var ce *apperrors.CustomError
			switch {
			case errors.As(err, &dup):
				assert.Contains(t, dup.Fields, tt.field)
			case errors.As(err, &ce):
				assert.Equal(t, tt.field, ce.Field)
			default:
				t.Fatalf("unexpected error type %T", err)
			}
		})
	}
}

func TestStudentService_ClassFull(t *testing.T) {
	f := newStudentFixture()
	class := f.classes.put(&models.Class{Name: "Form 1 A", Code: "1A", Capacity: ptr(1)})
	f.classes.enrolled[class.ID] = 1

	req := studentRequest("Ama", "Mensah")
	req.ClassID = &class.ID
	_, err := f.svc.Create(context.Background(), req)

	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "classId", ce.Field)
}

func TestStudentService_UpdateKeepsIndexNumber(t *testing.T) {
	f := newStudentFixture()
	ctx := context.Background()
	st, err := f.svc.Create(ctx, studentRequest("Ama", "Mensah"))
	require.NoError(t, err)

	req := studentRequest("Ama", "Mensah-Owusu")
	req.Status = models.StudentGraduated
	updated, err := f.svc.Update(ctx, st.ID, req)
	require.NoError(t, err)
	assert.Equal(t, st.IndexNumber, updated.IndexNumber)
	assert.Equal(t, "Mensah-Owusu", updated.LastName)
	assert.Equal(t, models.StudentGraduated, updated.Status)

	_, err = f.svc.Update(ctx, 404, req)
	assert.True(t, errors.Is(err, apperrors.ErrStudentNotFound))
}

func TestStudentService_Import(t *testing.T) {
	f := newStudentFixture()
	csv := strings.Join([]string{
		"Index Number,First Name,Last Name,Email,Gender,Admission Date,Class ID",
		",Ama,Mensah,ama@example.com,female,2025-09-01,",
		",,Owusu,,MALE,2025-09-01,",
		",Kofi,Boateng,AMA@example.com,MALE,2025-09-01,",
		",Yaw,Darko,,MALE,2025-09-01,abc",
		"",
		",Esi,Quaye,,FEMALE,2025-09-01,",
	}, "\n")

	result, err := f.svc.Import(context.Background(), strings.NewReader(csv), export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, "NPR250001", result.Items[0].IndexNumber)
	assert.Equal(t, "NPR250002", result.Items[1].IndexNumber)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Fields, "firstName")
	assert.Equal(t, 4, result.Errors[1].Line)
	assert.Contains(t, result.Errors[1].Fields, "email")
	assert.Equal(t, 5, result.Errors[2].Line)
	assert.Equal(t, "classId must be a number", result.Errors[2].Fields["classId"])
}

func TestStudentService_ImportRejectsEmptyFile(t *testing.T) {
	f := newStudentFixture()

	_, err := f.svc.Import(context.Background(), strings.NewReader(""), export.FormatCSV)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

func TestImportRowError_AbortsOnUnexpectedErrors(t *testing.T) {
	_, ok := importRowError(2, errors.New("connection reset"))
	assert.False(t, ok)

	rowErr, ok := importRowError(2, apperrors.NewValidationError("gender", "gender is invalid"))
	require.True(t, ok)
	assert.Equal(t, map[string]string{"gender": "gender is invalid"}, rowErr.Fields)
}
