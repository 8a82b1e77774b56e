package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Step is a wizard position, 1 through 8
type Step int

const (
	StepLogin Step = iota + 1
	StepPersonalInfo
	StepAddress
	StepLiabilities
	StepLoanInfo
	StepSummary
	StepFaceCapture
	StepTerms
)

// FirstStep and LastStep bound the wizard
const (
	FirstStep = StepLogin
	LastStep  = StepTerms
)

// Valid reports whether s is inside the wizard
func (s Step) Valid() bool { return s >= FirstStep && s <= LastStep }

// SessionContext holds the identifiers threaded through every backend call.
// Empty string means "not set".
type SessionContext struct {
	ApplicationID     string `json:"applicationId,omitempty"`
	CustomerID        string `json:"customerId,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	RegimentReference string `json:"regimentReference,omitempty"`
	LoginID           string `json:"loginId,omitempty"`
	OTPReference      string `json:"otpReference,omitempty"`
	MobileNumber      string `json:"mobileNumber,omitempty"`
	CIF               string `json:"cif,omitempty"`
}

// SessionPatch is a partial update; nil fields are left untouched
type SessionPatch struct {
	ApplicationID     *string
	CustomerID        *string
	AccountNumber     *string
	RegimentReference *string
	LoginID           *string
	OTPReference      *string
	MobileNumber      *string
	CIF               *string
}

// Str is a helper for building patches
func Str(s string) *string { return &s }

// FlexString decodes any JSON scalar into a string. The backend is loose about
// quoting amounts, codes and identifiers, so objects and arrays also decode
// (to "") instead of failing the surrounding record.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case b[0] == '{' || b[0] == '[':
		*f = ""
	default:
		// numbers and booleans keep their literal text
		*f = FlexString(b)
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int parses the value, returning 0 when it is not numeric
func (f FlexString) Int() int {
	n, _ := strconv.Atoi(string(f))
	return n
}

// Address is one postal address
type Address struct {
	Line     FlexString `json:"addressLine,omitempty"`
	Village  FlexString `json:"village,omitempty"`
	Upazila  FlexString `json:"upazila,omitempty"`
	District FlexString `json:"district,omitempty"`
	Division FlexString `json:"division,omitempty"`
	PostCode FlexString `json:"postCode,omitempty"`
}

// PersonalInfo is the personal section of the aggregate
type PersonalInfo struct {
	Status        FlexString `json:"status,omitempty"`
	FullName      FlexString `json:"fullName,omitempty"`
	FatherName    FlexString `json:"fatherName,omitempty"`
	MotherName    FlexString `json:"motherName,omitempty"`
	SpouseName    FlexString `json:"spouseName,omitempty"`
	DateOfBirth   FlexString `json:"dateOfBirth,omitempty"`
	Gender        FlexString `json:"gender,omitempty"`
	NID           FlexString `json:"nid,omitempty"`
	MaritalStatus FlexString `json:"maritalStatus,omitempty"`
	Email         FlexString `json:"email,omitempty"`
}

// ContactInfo is the contact/address section
type ContactInfo struct {
	Status           FlexString `json:"status,omitempty"`
	MobileNumber     FlexString `json:"mobileNumber,omitempty"`
	Email            FlexString `json:"email,omitempty"`
	PresentAddress   Address    `json:"presentAddress"`
	PermanentAddress Address    `json:"permanentAddress"`
	SameAsPresent    FlexString `json:"sameAsPresent,omitempty"`
}

// ProfessionalInfo is the employment section
type ProfessionalInfo struct {
	Status        FlexString `json:"status,omitempty"`
	Occupation    FlexString `json:"occupation,omitempty"`
	Rank          FlexString `json:"rank,omitempty"`
	Unit          FlexString `json:"unit,omitempty"`
	EmployerName  FlexString `json:"employerName,omitempty"`
	JoiningDate   FlexString `json:"joiningDate,omitempty"`
	MonthlyIncome FlexString `json:"monthlyIncome,omitempty"`
}

// LoanInfo is the loan master record
type LoanInfo struct {
	Status        FlexString `json:"status,omitempty"`
	ApplicationID FlexString `json:"applicationId,omitempty"`
	ProductCode   FlexString `json:"productCode,omitempty"`
	LoanAmount    FlexString `json:"loanAmount,omitempty"`
	TenureMonths  FlexString `json:"tenureMonths,omitempty"`
	InterestRate  FlexString `json:"interestRate,omitempty"`
	EMIAmount     FlexString `json:"emiAmount,omitempty"`
	Purpose       FlexString `json:"purpose,omitempty"`
}

// Liability is one declared existing loan
type Liability struct {
	Status            FlexString `json:"status,omitempty"`
	LiabilityID       FlexString `json:"liabilityId,omitempty"`
	InstitutionName   FlexString `json:"institutionName,omitempty"`
	LoanType          FlexString `json:"loanType,omitempty"`
	OutstandingAmount FlexString `json:"outstandingAmount,omitempty"`
	EMIAmount         FlexString `json:"emiAmount,omitempty"`
}

// Document is one uploaded file reference
type Document struct {
	Status       FlexString `json:"status,omitempty"`
	DocumentID   FlexString `json:"documentId,omitempty"`
	DocumentType FlexString `json:"documentType,omitempty"`
	FileName     FlexString `json:"fileName,omitempty"`
	UploadedAt   FlexString `json:"uploadedAt,omitempty"`
}

// Dashboard is the landing summary shown outside the wizard
type Dashboard struct {
	CustomerName      FlexString `json:"customerName,omitempty"`
	AccountNumber     FlexString `json:"accountNumber,omitempty"`
	EligibleAmount    FlexString `json:"eligibleAmount,omitempty"`
	ApplicationID     FlexString `json:"applicationId,omitempty"`
	ApplicationStatus FlexString `json:"applicationStatus,omitempty"`
	ActiveLoans       []LoanInfo  `json:"activeLoans,omitempty"`
}

// BasicInfo carries the identifiers stamped onto an aggregate
type BasicInfo struct {
	ApplicationID string
	AccountNumber string
	CustomerID    string
	ProfileStatus string
	LoanAcNo      string
}

// ApplicationDataState is the read model built from one aggregate fetch
type ApplicationDataState struct {
	ApplicationID string `json:"applicationId"`
	AccountNumber string `json:"accountNumber"`
	CustomerID    string `json:"customerId"`
	ProfileStatus string `json:"profileStatus"`
	LoanAcNo      string `json:"loanAcNo"`

	PersonalInfo     *PersonalInfo     `json:"personalInfo"`
	ContactInfo      *ContactInfo      `json:"contactInfo"`
	ProfessionalInfo *ProfessionalInfo `json:"professionalInfo"`
	LoanInfo         *LoanInfo         `json:"loanInfo"`
	Liabilities      []Liability       `json:"liabilities"`
	Documents        []Document        `json:"documents"`
	Dashboard        *Dashboard        `json:"dashboard,omitempty"`

	HasPersonalData     bool `json:"hasPersonalData"`
	HasContactData      bool `json:"hasContactData"`
	HasProfessionalData bool `json:"hasProfessionalData"`
	HasLoanData         bool `json:"hasLoanData"`
	HasLiabilityData    bool `json:"hasLiabilityData"`
	HasDocumentData     bool `json:"hasDocumentData"`

	IsDataLoaded bool `json:"isDataLoaded"`
	IsReadOnly   bool `json:"isReadOnly"`
}
