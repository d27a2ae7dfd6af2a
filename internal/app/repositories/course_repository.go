package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/db"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/dberrors"
)

var courseColumns = []string{
	"id", "code", "title", "description", "credit_hours", "department_id", "created_at", "updated_at",
}

var courseSorts = map[string]string{
	"code":        "code",
	"title":       "title",
	"creditHours": "credit_hours",
	"createdAt":   "created_at",
}

// CourseRepository handles courses and their teacher/class assignments
type CourseRepository struct {
	table
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(pool db.Pool) *CourseRepository {
	t := newTable(pool, "courses", "course", apperrors.ErrCourseNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"courses_code_key":  {Field: "code", Label: "code"},
		"courses_title_key": {Field: "title", Label: "title"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"code":  {Column: "code", Fold: true},
		"title": {Column: "title", Fold: true},
	}
	return &CourseRepository{table: t}
}

// GetByID retrieves a course with its teacher and class ids
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	q := r.sb.Select(courseColumns...).From(r.name).Where(squirrel.Eq{"id": id})
	course, err := queryOne[models.Course](ctx, r.db, q, r.notFound)
	if err != nil {
		return nil, err
	}
	if err := r.attachLinks(ctx, r.db, []*models.Course{course}); err != nil {
		return nil, err
	}
	return course, nil
}

func (r *CourseRepository) listOptions(q dto.CourseListQuery) listOptions {
	o := newListOptions(q.ListQuery, courseSorts, "code", "code", "title")
	if q.DepartmentID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"department_id": *q.DepartmentID})
	}
	if q.TeacherID != nil {
		o.Filters = append(o.Filters, squirrel.Expr(
			"EXISTS (SELECT 1 FROM course_teachers ct WHERE ct.course_id = courses.id AND ct.teacher_id = ?)", *q.TeacherID))
	}
	if q.ClassID != nil {
		o.Filters = append(o.Filters, squirrel.Expr(
			"EXISTS (SELECT 1 FROM course_classes cc WHERE cc.course_id = courses.id AND cc.class_id = ?)", *q.ClassID))
	}
	return o
}

// List returns one page of courses and the total match count
func (r *CourseRepository) List(ctx context.Context, q dto.CourseListQuery) ([]*models.Course, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	items, total, err := listRecords[models.Course](ctx, r.db,
		r.sb.Select(courseColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	if err != nil {
		return nil, 0, err
	}
	return items, total, r.attachLinks(ctx, r.db, items)
}

// ListAll returns up to limit courses matching q, for export
func (r *CourseRepository) ListAll(ctx context.Context, q dto.CourseListQuery, limit int) ([]*models.Course, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Course](ctx, r.db,
		r.sb.Select(courseColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	if err != nil {
		return nil, err
	}
	return items, r.attachLinks(ctx, r.db, items)
}

// Create inserts the course and its assignments in one transaction
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	q := r.sb.Insert(r.name).
		Columns("code", "title", "description", "credit_hours", "department_id").
		Values(c.Code, c.Title, c.Description, c.CreditHours, c.DepartmentID).
		Suffix("RETURNING " + joinColumns(courseColumns))

	return r.save(ctx, c, q, nil)
}

// Update saves the course row and replaces its assignments atomically
func (r *CourseRepository) Update(ctx context.Context, c *models.Course, expected *time.Time) error {
	q := r.sb.Update(r.name).
		Set("code", c.Code).
		Set("title", c.Title).
		Set("description", c.Description).
		Set("credit_hours", c.CreditHours).
		Set("department_id", c.DepartmentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(versionCond(c.ID, expected)).
		Suffix("RETURNING " + joinColumns(courseColumns))

	return r.save(ctx, c, q, expected)
}

func (r *CourseRepository) save(ctx context.Context, c *models.Course, q squirrel.Sqlizer, expected *time.Time) error {
	teacherIDs, classIDs := c.TeacherIDs, c.ClassIDs
	updating := c.ID > 0

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		saved, err := queryOne[models.Course](ctx, tx, q, errNoRows)
		if err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, r.sb, "course_teachers", "course_id", "teacher_id", saved.ID, teacherIDs); err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, r.sb, "course_classes", "course_id", "class_id", saved.ID, classIDs); err != nil {
			return err
		}
		if err := r.attachLinks(ctx, tx, []*models.Course{saved}); err != nil {
			return err
		}
		*c = *saved
		return nil
	})

	if updating && errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, c.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	return nil
}

func (r *CourseRepository) attachLinks(ctx context.Context, q db.DBTX, courses []*models.Course) error {
	courseIDs := idsOf(courses, func(c *models.Course) int64 { return c.ID })

	teachers, err := loadLinks(ctx, q, r.sb, "course_teachers", "course_id", "teacher_id", courseIDs)
	if err != nil {
		return err
	}
	classes, err := loadLinks(ctx, q, r.sb, "course_classes", "course_id", "class_id", courseIDs)
	if err != nil {
		return err
	}

	for _, c := range courses {
		c.TeacherIDs = nonNil(teachers[c.ID])
		c.ClassIDs = nonNil(classes[c.ID])
	}
	return nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
