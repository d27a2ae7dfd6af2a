package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
)

// memStore is an in-memory store keyed by id
type memStore[T any, Q any] struct {
	items    map[int64]*T
	nextID   int64
	notFound error
	getID    func(*T) int64
	setID    func(*T, int64)
	unique   map[string]func(*T) any
	now      time.Time
}

func newMemStore[T any, Q any](notFound error, getID func(*T) int64, setID func(*T, int64), unique map[string]func(*T) any) *memStore[T, Q] {
	return &memStore[T, Q]{
		items:    map[int64]*T{},
		nextID:   1,
		notFound: notFound,
		getID:    getID,
		setID:    setID,
		unique:   unique,
		now:      time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC),
	}
}

func (m *memStore[T, Q]) put(item *T) *T {
	m.setID(item, m.nextID)
	m.nextID++
	cp := *item
	m.items[m.getID(item)] = &cp
	return item
}

func (m *memStore[T, Q]) GetByID(_ context.Context, id int64) (*T, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, m.notFound
	}
	cp := *item
	return &cp, nil
}

func (m *memStore[T, Q]) sorted() []*T {
	ids := make([]int64, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		cp := *m.items[id]
		out = append(out, &cp)
	}
	return out
}

func (m *memStore[T, Q]) List(_ context.Context, _ Q) ([]*T, int64, error) {
	items := m.sorted()
	return items, int64(len(items)), nil
}

func (m *memStore[T, Q]) ListAll(_ context.Context, _ Q, limit int) ([]*T, error) {
	items := m.sorted()
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memStore[T, Q]) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return m.notFound
	}
	delete(m.items, id)
	return nil
}

func (m *memStore[T, Q]) BulkDelete(_ context.Context, ids []int64) ([]int64, error) {
	ids = helpers.DedupeIDs(ids)
	var missing []int64
	for _, id := range ids {
		if _, ok := m.items[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &apperrors.MissingIDsError{IDs: missing}
	}
	for _, id := range ids {
		delete(m.items, id)
	}
	return ids, nil
}

func (m *memStore[T, Q]) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *memStore[T, Q]) ExistsBy(_ context.Context, field string, value any, excludeID int64) (bool, error) {
	get, ok := m.unique[field]
	if !ok {
		return false, fmt.Errorf("no unique field %q", field)
	}
	for id, item := range m.items {
		if id == excludeID {
			continue
		}
		v, set := present(get(item))
		if !set {
			continue
		}
		if vs, ok := v.(string); ok {
			if strings.EqualFold(vs, fmt.Sprint(value)) {
				return true, nil
			}
			continue
		}
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

// update replaces the stored item, honouring the optimistic lock like the SQL repositories
func (m *memStore[T, Q]) update(item *T, expected *time.Time, updatedAt func(*T) *time.Time) error {
	id := m.getID(item)
	stored, ok := m.items[id]
	if !ok {
		return m.notFound
	}
	if expected != nil && !updatedAt(stored).Equal(*expected) {
		return apperrors.NewCustomError(apperrors.ErrStaleRecord, "stale")
	}
	m.now = m.now.Add(time.Second)
	*updatedAt(item) = m.now
	cp := *item
	m.items[id] = &cp
	return nil
}

type fakeDepartments struct {
	*memStore[models.Department, dto.DepartmentListQuery]
}

func newFakeDepartments() *fakeDepartments {
	return &fakeDepartments{newMemStore[models.Department, dto.DepartmentListQuery](apperrors.ErrDepartmentNotFound,
		func(d *models.Department) int64 { return d.ID },
		func(d *models.Department, id int64) { d.ID = id },
		map[string]func(*models.Department) any{
			"name": func(d *models.Department) any { return d.Name },
			"code": func(d *models.Department) any { return d.Code },
		})}
}

func (f *fakeDepartments) Create(_ context.Context, d *models.Department) error {
	d.CreatedAt, d.UpdatedAt = f.now, f.now
	f.put(d)
	return nil
}

func (f *fakeDepartments) Update(_ context.Context, d *models.Department, expected *time.Time) error {
	return f.update(d, expected, func(x *models.Department) *time.Time { return &x.UpdatedAt })
}

type fakeClasses struct {
	*memStore[models.Class, dto.ClassListQuery]
	enrolled map[int64]int
}

func newFakeClasses() *fakeClasses {
	return &fakeClasses{
		memStore: newMemStore[models.Class, dto.ClassListQuery](apperrors.ErrClassNotFound,
			func(c *models.Class) int64 { return c.ID },
			func(c *models.Class, id int64) { c.ID = id },
			map[string]func(*models.Class) any{
				"name": func(c *models.Class) any { return c.Name },
				"code": func(c *models.Class) any { return c.Code },
			}),
		enrolled: map[int64]int{},
	}
}

func (f *fakeClasses) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	c, err := f.memStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.StudentCount = f.enrolled[id]
	return c, nil
}

func (f *fakeClasses) Create(_ context.Context, c *models.Class) error {
	f.put(c)
	return nil
}

func (f *fakeClasses) Update(_ context.Context, c *models.Class, expected *time.Time) error {
	return f.update(c, expected, func(x *models.Class) *time.Time { return &x.UpdatedAt })
}

func (f *fakeClasses) CountStudents(_ context.Context, classID int64) (int, error) {
	return f.enrolled[classID], nil
}

type fakeCourses struct {
	*memStore[models.Course, dto.CourseListQuery]
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{newMemStore[models.Course, dto.CourseListQuery](apperrors.ErrCourseNotFound,
		func(c *models.Course) int64 { return c.ID },
		func(c *models.Course, id int64) { c.ID = id },
		map[string]func(*models.Course) any{
			"code":  func(c *models.Course) any { return c.Code },
			"title": func(c *models.Course) any { return c.Title },
		})}
}

func (f *fakeCourses) Create(_ context.Context, c *models.Course) error {
	f.put(c)
	return nil
}

func (f *fakeCourses) Update(_ context.Context, c *models.Course, expected *time.Time) error {
	return f.update(c, expected, func(x *models.Course) *time.Time { return &x.UpdatedAt })
}

type fakeStudents struct {
	*memStore[models.Student, dto.StudentListQuery]
	seq map[int]int64
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{
		memStore: newMemStore[models.Student, dto.StudentListQuery](apperrors.ErrStudentNotFound,
			func(s *models.Student) int64 { return s.ID },
			func(s *models.Student, id int64) { s.ID = id },
			map[string]func(*models.Student) any{
				"indexNumber": func(s *models.Student) any { return s.IndexNumber },
				"email":       func(s *models.Student) any { return s.Email },
				"phone":       func(s *models.Student) any { return s.Phone },
				"userId":      func(s *models.Student) any { return s.UserID },
			}),
		seq: map[int]int64{},
	}
}

func (f *fakeStudents) Create(_ context.Context, s *models.Student) error {
	if s.IndexNumber == "" {
		year := s.AdmissionDate.Year()
		f.seq[year]++
		s.IndexNumber = fmt.Sprintf("NPR%02d%04d", year%100, f.seq[year])
	}
	f.put(s)
	return nil
}

func (f *fakeStudents) Update(_ context.Context, s *models.Student, expected *time.Time) error {
	return f.update(s, expected, func(x *models.Student) *time.Time { return &x.UpdatedAt })
}

type fakeTeachers struct {
	*memStore[models.Teacher, dto.TeacherListQuery]
}

func newFakeTeachers() *fakeTeachers {
	return &fakeTeachers{newMemStore[models.Teacher, dto.TeacherListQuery](apperrors.ErrTeacherNotFound,
		func(t *models.Teacher) int64 { return t.ID },
		func(t *models.Teacher, id int64) { t.ID = id },
		map[string]func(*models.Teacher) any{
			"employeeId": func(t *models.Teacher) any { return t.EmployeeID },
			"email":      func(t *models.Teacher) any { return t.Email },
			"phone":      func(t *models.Teacher) any { return t.Phone },
			"userId":     func(t *models.Teacher) any { return t.UserID },
		})}
}

func (f *fakeTeachers) Create(_ context.Context, t *models.Teacher) error {
	f.put(t)
	return nil
}

func (f *fakeTeachers) Update(_ context.Context, t *models.Teacher, expected *time.Time) error {
	return f.update(t, expected, func(x *models.Teacher) *time.Time { return &x.UpdatedAt })
}

type fakeStaff struct {
	*memStore[models.Staff, dto.StaffListQuery]
}

func newFakeStaff() *fakeStaff {
	return &fakeStaff{newMemStore[models.Staff, dto.StaffListQuery](apperrors.ErrStaffNotFound,
		func(s *models.Staff) int64 { return s.ID },
		func(s *models.Staff, id int64) { s.ID = id },
		map[string]func(*models.Staff) any{
			"employeeId": func(s *models.Staff) any { return s.EmployeeID },
			"email":      func(s *models.Staff) any { return s.Email },
			"phone":      func(s *models.Staff) any { return s.Phone },
			"userId":     func(s *models.Staff) any { return s.UserID },
		})}
}

func (f *fakeStaff) Create(_ context.Context, s *models.Staff) error {
	f.put(s)
	return nil
}

func (f *fakeStaff) Update(_ context.Context, s *models.Staff, expected *time.Time) error {
	return f.update(s, expected, func(x *models.Staff) *time.Time { return &x.UpdatedAt })
}

type fakeRoles struct {
	*memStore[models.Role, dto.RoleListQuery]
	grants map[int64][]int64
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		memStore: newMemStore[models.Role, dto.RoleListQuery](apperrors.ErrRoleNotFound,
			func(r *models.Role) int64 { return r.ID },
			func(r *models.Role, id int64) { r.ID = id },
			map[string]func(*models.Role) any{
				"name": func(r *models.Role) any { return r.Name },
			}),
		grants: map[int64][]int64{},
	}
}

func (f *fakeRoles) GetByName(_ context.Context, name string) (*models.Role, error) {
	for _, r := range f.items {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperrors.ErrRoleNotFound
}

func (f *fakeRoles) Create(_ context.Context, role *models.Role, permissionIDs []int64) error {
	f.put(role)
	f.grants[role.ID] = permissionIDs
	return nil
}

func (f *fakeRoles) Update(_ context.Context, role *models.Role, permissionIDs []int64, expected *time.Time) error {
	if err := f.update(role, expected, func(x *models.Role) *time.Time { return &x.UpdatedAt }); err != nil {
		return err
	}
	f.grants[role.ID] = permissionIDs
	return nil
}

type fakePermissions struct {
	*memStore[models.Permission, dto.PermissionListQuery]
}

func newFakePermissions(names ...string) *fakePermissions {
	f := &fakePermissions{newMemStore[models.Permission, dto.PermissionListQuery](apperrors.ErrPermissionNotFound,
		func(p *models.Permission) int64 { return p.ID },
		func(p *models.Permission, id int64) { p.ID = id },
		map[string]func(*models.Permission) any{
			"name": func(p *models.Permission) any { return p.Name },
		})}
	for _, n := range names {
		f.put(&models.Permission{Name: n})
	}
	return f
}

func (f *fakePermissions) UpdateDescription(_ context.Context, id int64, description string) (*models.Permission, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, f.notFound
	}
	p.Description = description
	cp := *p
	return &cp, nil
}

func (f *fakePermissions) MissingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if _, ok := f.items[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type fakeCache struct {
	invalidated []int64
	all         int
}

func (c *fakeCache) Invalidate(roleID int64) { c.invalidated = append(c.invalidated, roleID) }
func (c *fakeCache) InvalidateAll()          { c.all++ }

type fakeUsers struct {
	*memStore[models.User, dto.UserListQuery]
	lastLogin map[int64]bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		memStore: newMemStore[models.User, dto.UserListQuery](apperrors.ErrUserNotFound,
			func(u *models.User) int64 { return u.ID },
			func(u *models.User, id int64) { u.ID = id },
			map[string]func(*models.User) any{
				"email":    func(u *models.User) any { return u.Email },
				"username": func(u *models.User) any { return u.Username },
			}),
		lastLogin: map[int64]bool{},
	}
}

func (f *fakeUsers) GetByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range f.items {
		if strings.EqualFold(u.Email, login) || strings.EqualFold(u.Username, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.put(u)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User, expected *time.Time) error {
	stored, ok := f.items[u.ID]
	if ok && u.Password == "" {
		u.Password = stored.Password
		u.RoleName = stored.RoleName
	}
	return f.update(u, expected, func(x *models.User) *time.Time { return &x.UpdatedAt })
}

func (f *fakeUsers) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := f.items[id]
	if !ok {
		return f.notFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.items[id]
	if !ok {
		return f.notFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id int64) error {
	f.lastLogin[id] = true
	return nil
}

func (f *fakeUsers) CountActiveByRole(_ context.Context, roleID int64) (int64, error) {
	var n int64
	for _, u := range f.items {
		if u.RoleID == roleID && u.IsActive {
			n++
		}
	}
	return n, nil
}

type fakeTokens struct {
	tokens     map[string]*models.RefreshToken
	revokedAll map[int64]int
	revokeErr  error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*models.RefreshToken{}, revokedAll: map[int64]int{}}
}

func (f *fakeTokens) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	f.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

func (f *fakeTokens) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if t.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if t.ExpiryDate.Before(time.Now()) {
		return nil, apperrors.ErrTokenExpired
	}
	return t, nil
}

func (f *fakeTokens) Rotate(ctx context.Context, oldToken, newToken string, userID int64, expiry time.Time) error {
	t, ok := f.tokens[oldToken]
	if !ok || t.IsRevoked {
		return apperrors.ErrTokenRevoked
	}
	t.IsRevoked = true
	return f.CreateToken(ctx, newToken, userID, expiry)
}

func (f *fakeTokens) RevokeToken(_ context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	f.revokedAll[userID]++
	if f.revokeErr != nil {
		return f.revokeErr
	}
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

type fakePermissionLister struct {
	superuser string
	grants    map[int64][]string
}

func (f fakePermissionLister) Permissions(_ context.Context, roleID int64, _ string) ([]string, error) {
	return f.grants[roleID], nil
}

func (f fakePermissionLister) IsSuperuser(roleName string) bool {
	return roleName == f.superuser
}

func ptr[T any](v T) *T {
	return &v
}
