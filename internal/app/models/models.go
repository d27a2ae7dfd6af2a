package models

// Gender of a person record
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// StudentStatus is the enrolment state of a student
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentGraduated StudentStatus = "GRADUATED"
	StudentWithdrawn StudentStatus = "WITHDRAWN"
	StudentSuspended StudentStatus = "SUSPENDED"
)

// EmploymentStatus applies to teachers and staff
type EmploymentStatus string

const (
	EmploymentActive     EmploymentStatus = "ACTIVE"
	EmploymentOnLeave    EmploymentStatus = "ON_LEAVE"
	EmploymentRetired    EmploymentStatus = "RETIRED"
	EmploymentTerminated EmploymentStatus = "TERMINATED"
)
