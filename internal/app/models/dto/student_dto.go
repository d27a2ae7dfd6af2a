package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// StudentRequest is the create/update body of a student.
// IndexNumber is generated from the admission year when left empty on create.
type StudentRequest struct {
	IndexNumber   string               `json:"indexNumber" binding:"omitempty,alphanum,max=20" example:"NPR250001"`
	FirstName     string               `json:"firstName" binding:"required,notblank,max=100" example:"Ama"`
	MiddleName    string               `json:"middleName" binding:"omitempty,max=100"`
	LastName      string               `json:"lastName" binding:"required,notblank,max=100" example:"Mensah"`
	Email         *string              `json:"email" binding:"omitempty,email,max=255"`
	Phone         *string              `json:"phone" binding:"omitempty,phone"`
	Gender        models.Gender        `json:"gender" binding:"required,oneof=MALE FEMALE" example:"FEMALE"`
	DateOfBirth   *string              `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02" example:"2009-03-14"`
	Address       string               `json:"address" binding:"omitempty,max=255"`
	GuardianName  string               `json:"guardianName" binding:"omitempty,max=150"`
	GuardianPhone string               `json:"guardianPhone" binding:"omitempty,phone"`
	ClassID       *int64               `json:"classId" binding:"omitempty,gt=0"`
	DepartmentID  *int64               `json:"departmentId" binding:"omitempty,gt=0"`
	AdmissionDate string               `json:"admissionDate" binding:"required,datetime=2006-01-02" example:"2025-09-01"`
	Status        models.StudentStatus `json:"status" binding:"omitempty,oneof=ACTIVE GRADUATED WITHDRAWN SUSPENDED"`
	UserID        *int64               `json:"userId" binding:"omitempty,gt=0"`
	Versioned
}

// StudentListQuery filters the student list
type StudentListQuery struct {
	ListQuery
	ClassID       *int64 `form:"classId" binding:"omitempty,gt=0"`
	DepartmentID  *int64 `form:"departmentId" binding:"omitempty,gt=0"`
	Gender        string `form:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	Status        string `form:"status" binding:"omitempty,oneof=ACTIVE GRADUATED WITHDRAWN SUSPENDED"`
	AdmissionYear *int   `form:"admissionYear" binding:"omitempty,min=1950,max=2100"`
}

// ImportRowError describes why one uploaded row was rejected
type ImportRowError struct {
	Line    int               `json:"line" example:"4"`
	Message string            `json:"message" example:"A student with this email already exists"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ImportResult summarises a student import
type ImportResult struct {
	Total   int               `json:"total" example:"10"`
	Created int               `json:"created" example:"9"`
	Failed  int               `json:"failed" example:"1"`
	Items   []*models.Student `json:"items"`
	Errors  []ImportRowError  `json:"errors"`
}

// StudentColumns is the header row used by exports and accepted by imports
var StudentColumns = []string{
	"Index Number", "First Name", "Middle Name", "Last Name", "Email", "Phone", "Gender", "Date Of Birth",
	"Address", "Guardian Name", "Guardian Phone", "Class ID", "Department ID", "Admission Date", "Status",
}

// StudentTable converts students into an export table
func StudentTable(items []*models.Student) *export.Table {
	t := export.NewTable("Students", StudentColumns...)
	for _, s := range items {
		t.Append(s.IndexNumber, s.FirstName, s.MiddleName, s.LastName, formatString(s.Email), formatString(s.Phone),
			string(s.Gender), formatDate(s.DateOfBirth), s.Address, s.GuardianName, s.GuardianPhone,
			formatID(s.ClassID), formatID(s.DepartmentID), formatDate(&s.AdmissionDate), string(s.Status))
	}
	return t
}

// StudentRequestFromRecord maps an uploaded row onto a request.
// Numeric columns that do not parse are returned in the error map.
func StudentRequestFromRecord(r export.Record) (*StudentRequest, map[string]string) {
	problems := map[string]string{}

	req := &StudentRequest{
		IndexNumber:   r.Get("indexNumber"),
		FirstName:     r.Get("firstName"),
		MiddleName:    r.Get("middleName"),
		LastName:      r.Get("lastName"),
		Email:         optional(r.Get("email")),
		Phone:         optional(r.Get("phone")),
		Gender:        models.Gender(upper(r.Get("gender"))),
		DateOfBirth:   optional(r.Get("dateOfBirth")),
		Address:       r.Get("address"),
		GuardianName:  r.Get("guardianName"),
		GuardianPhone: r.Get("guardianPhone"),
		AdmissionDate: r.Get("admissionDate"),
		Status:        models.StudentStatus(upper(r.Get("status"))),
	}

	for key, dst := range map[string]**int64{"classId": &req.ClassID, "departmentId": &req.DepartmentID} {
		v := r.Get(key)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			problems[key] = key + " must be a number"
			continue
		}
		*dst = &id
	}

	return req, problems
}
