package services

import (
	"context"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// DepartmentStore is the department persistence the service needs
type DepartmentStore interface {
	store[models.Department, dto.DepartmentListQuery]
	Create(ctx context.Context, d *models.Department) error
	Update(ctx context.Context, d *models.Department, expected *time.Time) error
}

// DepartmentService handles department-related operations
type DepartmentService struct {
	recordService[models.Department, dto.DepartmentListQuery]
	departments DepartmentStore
	teachers    idChecker
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(departments DepartmentStore, teachers idChecker, exportLimit int) *DepartmentService {
	return &DepartmentService{
		recordService: newRecordService[models.Department, dto.DepartmentListQuery](departments, "department", exportLimit, dto.DepartmentTable),
		departments:   departments,
		teachers:      teachers,
	}
}

func departmentFromRequest(req *dto.DepartmentRequest) *models.Department {
	return &models.Department{
		Name:          strings.TrimSpace(req.Name),
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:   strings.TrimSpace(req.Description),
		HeadTeacherID: req.HeadTeacherID,
	}
}

// validate checks references and unique fields; excludeID is the record being updated
func (s *DepartmentService) validate(ctx context.Context, d *models.Department, excludeID int64) error {
	if err := checkReferences(ctx, ref("headTeacherId", "head teacher", d.HeadTeacherID, s.teachers)); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.departments, "department", excludeID,
		unique("name", "name", d.Name),
		unique("code", "code", d.Code),
	)
}

// Create creates a new department
func (s *DepartmentService) Create(ctx context.Context, req *dto.DepartmentRequest) (*models.Department, error) {
	d := departmentFromRequest(req)
	if err := s.validate(ctx, d, 0); err != nil {
		return nil, err
	}

	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	logger.Info().Int64("departmentID", d.ID).Str("code", d.Code).Msg("Department created")
	return d, nil
}

// Update replaces a department's fields
func (s *DepartmentService) Update(ctx context.Context, id int64, req *dto.DepartmentRequest) (*models.Department, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}

	d := departmentFromRequest(req)
	d.ID = id
	if err := s.validate(ctx, d, id); err != nil {
		return nil, err
	}

	if err := s.departments.Update(ctx, d, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return d, nil
}
