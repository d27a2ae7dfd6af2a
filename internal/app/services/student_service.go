package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
	"github.com/Azechum30/npresec-app/internal/pkg/validation"
)

// MaxImportRows bounds the data rows accepted in one student upload
const MaxImportRows = 2000

// StudentStore is the student persistence the service needs
type StudentStore interface {
	store[models.Student, dto.StudentListQuery]
	Create(ctx context.Context, s *models.Student) error
	Update(ctx context.Context, s *models.Student, expected *time.Time) error
}

// ClassLookup loads a class with its current enrolment
type ClassLookup interface {
	idChecker
	GetByID(ctx context.Context, id int64) (*models.Class, error)
}

// StudentService handles student records, index numbers and bulk import
type StudentService struct {
	recordService[models.Student, dto.StudentListQuery]
	students    StudentStore
	classes     ClassLookup
	departments idChecker
	users       idChecker
}

// NewStudentService creates a new StudentService
func NewStudentService(students StudentStore, classes ClassLookup, departments, users idChecker, exportLimit int) *StudentService {
	return &StudentService{
		recordService: newRecordService[models.Student, dto.StudentListQuery](students, "student", exportLimit, dto.StudentTable),
		students:      students,
		classes:       classes,
		departments:   departments,
		users:         users,
	}
}

// studentFromRequest normalises the request. Optional unique fields that are blank become NULL.
func studentFromRequest(req *dto.StudentRequest) (*models.Student, error) {
	admission, err := parseDate("admissionDate", req.AdmissionDate)
	if err != nil {
		return nil, err
	}
	dob, err := parseOptionalDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if dob != nil && !dob.Before(admission) {
		return nil, apperrors.NewValidationError("dateOfBirth", "dateOfBirth must be before admissionDate")
	}

	email := helpers.NullIfEmpty(req.Email)
	if email != nil {
		lower := strings.ToLower(*email)
		email = &lower
	}

	status := req.Status
	if status == "" {
		status = models.StudentActive
	}

	return &models.Student{
		IndexNumber:   strings.ToUpper(strings.TrimSpace(req.IndexNumber)),
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    strings.TrimSpace(req.MiddleName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         email,
		Phone:         helpers.NullIfEmpty(req.Phone),
		Gender:        req.Gender,
		DateOfBirth:   dob,
		Address:       strings.TrimSpace(req.Address),
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		ClassID:       req.ClassID,
		DepartmentID:  req.DepartmentID,
		AdmissionDate: admission,
		Status:        status,
		UserID:        req.UserID,
	}, nil
}

func (s *StudentService) validate(ctx context.Context, st *models.Student, excludeID int64) error {
	if err := checkReferences(ctx,
		ref("classId", "class", st.ClassID, s.classes),
		ref("departmentId", "department", st.DepartmentID, s.departments),
		ref("userId", "user account", st.UserID, s.users),
	); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.students, "student", excludeID,
		unique("indexNumber", "index number", st.IndexNumber),
		unique("email", "email", st.Email),
		unique("phone", "phone number", st.Phone),
		unique("userId", "user account", st.UserID),
	)
}

// checkCapacity rejects a full class before any write; the repository repeats the check under a row lock
func (s *StudentService) checkCapacity(ctx context.Context, classID int64) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return err
	}
	if class.Capacity != nil && class.StudentCount >= *class.Capacity {
		return apperrors.NewValidationError("classId", "The selected class is full")
	}
	return nil
}

// Create creates a student. An empty index number is generated from the admission year.
func (s *StudentService) Create(ctx context.Context, req *dto.StudentRequest) (*models.Student, error) {
	st, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, st, 0); err != nil {
		return nil, err
	}
	if st.ClassID != nil {
		if err := s.checkCapacity(ctx, *st.ClassID); err != nil {
			return nil, err
		}
	}

	if err := s.students.Create(ctx, st); err != nil {
		return nil, err
	}
	logger.Info().Int64("studentID", st.ID).Str("indexNumber", st.IndexNumber).Msg("Student created")
	return st, nil
}

// Update replaces a student's fields. An empty index number keeps the current one.
func (s *StudentService) Update(ctx context.Context, id int64, req *dto.StudentRequest) (*models.Student, error) {
	current, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	st, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	st.ID = id
	if st.IndexNumber == "" {
		st.IndexNumber = current.IndexNumber
	}
	if err := s.validate(ctx, st, id); err != nil {
		return nil, err
	}
	if st.ClassID != nil && (current.ClassID == nil || *current.ClassID != *st.ClassID) {
		if err := s.checkCapacity(ctx, *st.ClassID); err != nil {
			return nil, err
		}
	}

	if err := s.students.Update(ctx, st, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return st, nil
}

// Import creates one student per data row of a CSV or XLSX upload.
// Rows are independent: a rejected row is reported and the rest still go in.
func (s *StudentService) Import(ctx context.Context, r io.Reader, format export.Format) (*dto.ImportResult, error) {
	records, err := export.ReadRecords(r, format)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Could not read the uploaded file: " + err.Error())
	}
	if len(records) > MaxImportRows {
		return nil, apperrors.NewBadRequestError("The file has too many rows, the limit is 2000")
	}

	result := &dto.ImportResult{
		Total:  len(records),
		Items:  make([]*models.Student, 0, len(records)),
		Errors: []dto.ImportRowError{},
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, problems := dto.StudentRequestFromRecord(rec)
		if err := validation.Struct(req); err != nil {
			fields, ok := validation.TranslateErrors(err)
			if !ok {
				return nil, err
			}
			for k, v := range fields {
				problems[k] = v
			}
		}
		if len(problems) > 0 {
			result.Errors = append(result.Errors, dto.ImportRowError{
				Line: rec.Line, Message: "The row has invalid values", Fields: problems,
			})
			continue
		}

		st, err := s.Create(ctx, req)
		if err != nil {
			rowErr, ok := importRowError(rec.Line, err)
			if !ok {
				return nil, err
			}
			result.Errors = append(result.Errors, rowErr)
			continue
		}
		result.Items = append(result.Items, st)
	}

	result.Created = len(result.Items)
	result.Failed = len(result.Errors)
	logger.Info().Int("total", result.Total).Int("created", result.Created).Int("failed", result.Failed).
		Msg("Student import finished")
	return result, nil
}

// importRowError reports application errors against the row; anything else aborts the import
func importRowError(line int, err error) (dto.ImportRowError, bool) {
	var dup *apperrors.DuplicateError
	if errors.As(err, &dup) {
		return dto.ImportRowError{Line: line, Message: dup.Error(), Fields: dup.Fields}, true
	}

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		rowErr := dto.ImportRowError{Line: line, Message: custom.Error()}
		if custom.Field != "" {
			rowErr.Fields = map[string]string{custom.Field: custom.Error()}
		}
		return rowErr, true
	}

	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return dto.ImportRowError{Line: line, Message: err.Error()}, true
	}
	return dto.ImportRowError{}, false
}
