package services

import (
	"context"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// ClassStore is the class persistence the service needs
type ClassStore interface {
	store[models.Class, dto.ClassListQuery]
	Create(ctx context.Context, c *models.Class) error
	Update(ctx context.Context, c *models.Class, expected *time.Time) error
	CountStudents(ctx context.Context, classID int64) (int, error)
}

// ClassService handles classes
type ClassService struct {
	recordService[models.Class, dto.ClassListQuery]
	classes     ClassStore
	departments idChecker
	teachers    idChecker
}

// NewClassService creates a new ClassService
func NewClassService(classes ClassStore, departments, teachers idChecker, exportLimit int) *ClassService {
	return &ClassService{
		recordService: newRecordService[models.Class, dto.ClassListQuery](classes, "class", exportLimit, dto.ClassTable),
		classes:       classes,
		departments:   departments,
		teachers:      teachers,
	}
}

func classFromRequest(req *dto.ClassRequest) *models.Class {
	return &models.Class{
		Name:           strings.TrimSpace(req.Name),
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Level:          req.Level,
		DepartmentID:   req.DepartmentID,
		ClassTeacherID: req.ClassTeacherID,
		Capacity:       req.Capacity,
	}
}

func (s *ClassService) validate(ctx context.Context, c *models.Class, excludeID int64) error {
	if err := checkReferences(ctx,
		ref("departmentId", "department", c.DepartmentID, s.departments),
		ref("classTeacherId", "class teacher", c.ClassTeacherID, s.teachers),
	); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.classes, "class", excludeID,
		unique("name", "name", c.Name),
		unique("code", "code", c.Code),
	)
}

// Create creates a class
func (s *ClassService) Create(ctx context.Context, req *dto.ClassRequest) (*models.Class, error) {
	c := classFromRequest(req)
	if err := s.validate(ctx, c, 0); err != nil {
		return nil, err
	}

	if err := s.classes.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info().Int64("classID", c.ID).Str("code", c.Code).Msg("Class created")
	return c, nil
}

// Update replaces a class's fields. The capacity cannot drop below the current enrolment.
func (s *ClassService) Update(ctx context.Context, id int64, req *dto.ClassRequest) (*models.Class, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}

	c := classFromRequest(req)
	c.ID = id
	if err := s.validate(ctx, c, id); err != nil {
		return nil, err
	}

	if c.Capacity != nil {
		enrolled, err := s.classes.CountStudents(ctx, id)
		if err != nil {
			return nil, err
		}
		if *c.Capacity < enrolled {
			return nil, apperrors.NewValidationError("capacity",
				"capacity cannot be lower than the number of students already in the class")
		}
	}

	if err := s.classes.Update(ctx, c, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}
