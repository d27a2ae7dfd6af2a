package services

import (
	"context"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// TeacherStore is the teacher persistence the service needs
type TeacherStore interface {
	store[models.Teacher, dto.TeacherListQuery]
	Create(ctx context.Context, t *models.Teacher) error
	Update(ctx context.Context, t *models.Teacher, expected *time.Time) error
}

// TeacherService handles teachers
type TeacherService struct {
	recordService[models.Teacher, dto.TeacherListQuery]
	teachers    TeacherStore
	departments idChecker
	users       idChecker
}

// NewTeacherService creates a new TeacherService
func NewTeacherService(teachers TeacherStore, departments, users idChecker, exportLimit int) *TeacherService {
	return &TeacherService{
		recordService: newRecordService[models.Teacher, dto.TeacherListQuery](teachers, "teacher", exportLimit, dto.TeacherTable),
		teachers:      teachers,
		departments:   departments,
		users:         users,
	}
}

func teacherFromRequest(req *dto.TeacherRequest) (*models.Teacher, error) {
	dob, err := parseOptionalDate("dateOfBirth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	hired, err := parseOptionalDate("hireDate", req.HireDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.EmploymentActive
	}

	return &models.Teacher{
		EmployeeID:     strings.ToUpper(strings.TrimSpace(req.EmployeeID)),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          helpers.NullIfEmpty(req.Phone),
		Gender:         req.Gender,
		DateOfBirth:    dob,
		Qualification:  strings.TrimSpace(req.Qualification),
		Specialization: strings.TrimSpace(req.Specialization),
		DepartmentID:   req.DepartmentID,
		HireDate:       hired,
		Status:         status,
		UserID:         req.UserID,
	}, nil
}

func (s *TeacherService) validate(ctx context.Context, t *models.Teacher, excludeID int64) error {
	if err := checkReferences(ctx,
		ref("departmentId", "department", t.DepartmentID, s.departments),
		ref("userId", "user account", t.UserID, s.users),
	); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.teachers, "teacher", excludeID,
		unique("employeeId", "employee ID", t.EmployeeID),
		unique("email", "email", t.Email),
		unique("phone", "phone number", t.Phone),
		unique("userId", "user account", t.UserID),
	)
}

// Create creates a teacher
func (s *TeacherService) Create(ctx context.Context, req *dto.TeacherRequest) (*models.Teacher, error) {
	t, err := teacherFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, t, 0); err != nil {
		return nil, err
	}

	if err := s.teachers.Create(ctx, t); err != nil {
		return nil, err
	}
	logger.Info().Int64("teacherID", t.ID).Str("employeeID", t.EmployeeID).Msg("Teacher created")
	return t, nil
}

// Update replaces a teacher's fields
func (s *TeacherService) Update(ctx context.Context, id int64, req *dto.TeacherRequest) (*models.Teacher, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}

	t, err := teacherFromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.validate(ctx, t, id); err != nil {
		return nil, err
	}

	if err := s.teachers.Update(ctx, t, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}
