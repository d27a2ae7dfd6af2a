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

// CourseStore is the course persistence the service needs
type CourseStore interface {
	store[models.Course, dto.CourseListQuery]
	Create(ctx context.Context, c *models.Course) error
	Update(ctx context.Context, c *models.Course, expected *time.Time) error
}

// CourseService handles courses and their teacher/class assignments
type CourseService struct {
	recordService[models.Course, dto.CourseListQuery]
	courses     CourseStore
	departments idChecker
	teachers    idChecker
	classes     idChecker
}

// NewCourseService creates a new CourseService
func NewCourseService(courses CourseStore, departments, teachers, classes idChecker, exportLimit int) *CourseService {
	return &CourseService{
		recordService: newRecordService[models.Course, dto.CourseListQuery](courses, "course", exportLimit, dto.CourseTable),
		courses:       courses,
		departments:   departments,
		teachers:      teachers,
		classes:       classes,
	}
}

func courseFromRequest(req *dto.CourseRequest) *models.Course {
	return &models.Course{
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		CreditHours:  req.CreditHours,
		DepartmentID: req.DepartmentID,
		TeacherIDs:   helpers.DedupeIDs(req.TeacherIDs),
		ClassIDs:     helpers.DedupeIDs(req.ClassIDs),
	}
}

func (s *CourseService) validate(ctx context.Context, c *models.Course, excludeID int64) error {
	if err := checkReferences(ctx, ref("departmentId", "department", c.DepartmentID, s.departments)); err != nil {
		return err
	}
	if err := checkReferenceIDs(ctx, "teacherIds", "teacher", s.teachers, c.TeacherIDs); err != nil {
		return err
	}
	if err := checkReferenceIDs(ctx, "classIds", "class", s.classes, c.ClassIDs); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.courses, "course", excludeID,
		unique("code", "code", c.Code),
		unique("title", "title", c.Title),
	)
}

// Create creates a course with its assignments
func (s *CourseService) Create(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	c := courseFromRequest(req)
	if err := s.validate(ctx, c, 0); err != nil {
		return nil, err
	}

	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info().Int64("courseID", c.ID).Str("code", c.Code).
		Int("teachers", len(c.TeacherIDs)).Int("classes", len(c.ClassIDs)).Msg("Course created")
	return c, nil
}

// Update replaces a course and its assignments
func (s *CourseService) Update(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}

	c := courseFromRequest(req)
	c.ID = id
	if err := s.validate(ctx, c, id); err != nil {
		return nil, err
	}

	if err := s.courses.Update(ctx, c, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}
