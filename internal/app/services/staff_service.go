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

// StaffStore is the staff persistence the service needs
type StaffStore interface {
	store[models.Staff, dto.StaffListQuery]
	Create(ctx context.Context, s *models.Staff) error
	Update(ctx context.Context, s *models.Staff, expected *time.Time) error
}

// StaffService handles non-teaching staff
type StaffService struct {
	recordService[models.Staff, dto.StaffListQuery]
	staff       StaffStore
	departments idChecker
	users       idChecker
}

// NewStaffService creates a new StaffService
func NewStaffService(staff StaffStore, departments, users idChecker, exportLimit int) *StaffService {
	return &StaffService{
		recordService: newRecordService[models.Staff, dto.StaffListQuery](staff, "staff member", exportLimit, dto.StaffTable),
		staff:         staff,
		departments:   departments,
		users:         users,
	}
}

func staffFromRequest(req *dto.StaffRequest) (*models.Staff, error) {
	hired, err := parseOptionalDate("hireDate", req.HireDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.EmploymentActive
	}

	return &models.Staff{
		EmployeeID:   strings.ToUpper(strings.TrimSpace(req.EmployeeID)),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        helpers.NullIfEmpty(req.Phone),
		Gender:       req.Gender,
		Position:     strings.TrimSpace(req.Position),
		DepartmentID: req.DepartmentID,
		HireDate:     hired,
		Status:       status,
		UserID:       req.UserID,
	}, nil
}

func (s *StaffService) validate(ctx context.Context, m *models.Staff, excludeID int64) error {
	if err := checkReferences(ctx,
		ref("departmentId", "department", m.DepartmentID, s.departments),
		ref("userId", "user account", m.UserID, s.users),
	); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.staff, "staff member", excludeID,
		unique("employeeId", "employee ID", m.EmployeeID),
		unique("email", "email", m.Email),
		unique("phone", "phone number", m.Phone),
		unique("userId", "user account", m.UserID),
	)
}

// Create creates a staff member
func (s *StaffService) Create(ctx context.Context, req *dto.StaffRequest) (*models.Staff, error) {
	m, err := staffFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, m, 0); err != nil {
		return nil, err
	}

	if err := s.staff.Create(ctx, m); err != nil {
		return nil, err
	}
	logger.Info().Int64("staffID", m.ID).Str("employeeID", m.EmployeeID).Msg("Staff member created")
	return m, nil
}

// Update replaces a staff member's fields
func (s *StaffService) Update(ctx context.Context, id int64, req *dto.StaffRequest) (*models.Staff, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}

	m, err := staffFromRequest(req)
	if err != nil {
		return nil, err
	}
	m.ID = id
	if err := s.validate(ctx, m, id); err != nil {
		return nil, err
	}

	if err := s.staff.Update(ctx, m, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}
