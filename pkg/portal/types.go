package portal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Application status values the backend recognizes.
var ApplicationStatuses = []string{
	"PENDING",
	"SUBMITTED",
	"UNDER_REVIEW",
	"APPROVED",
	"REJECTED",
	"COMPLETED",
}

// Payment status values the backend recognizes.
var PaymentStatuses = []string{
	"pending",
	"processing",
	"completed",
	"failed",
	"refunded",
}

// ValidApplicationStatus reports whether s is a status the backend
// recognizes on applications. Unknown values are silently ignored by the
// backend filter, so callers reject them up front.
func ValidApplicationStatus(s string) bool {
	return containsStatus(ApplicationStatuses, s)
}

// ValidPaymentStatus reports whether s is a status the backend recognizes
// on payments.
func ValidPaymentStatus(s string) bool {
	return containsStatus(PaymentStatuses, s)
}

func containsStatus(statuses []string, s string) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Ref is a relation the backend serializes inconsistently: sometimes an
// embedded object, sometimes an IRI string like "/api/applications/12".
type Ref json.RawMessage

// MarshalJSON passes the raw relation through unchanged.
func (r Ref) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(r).MarshalJSON()
}

// UnmarshalJSON stores the raw relation bytes.
func (r *Ref) UnmarshalJSON(data []byte) error {
	*r = Ref(append([]byte(nil), data...))
	return nil
}

// Matches reports whether the relation points at the given resource id,
// whichever serialization the backend picked.
func (r Ref) Matches(resource string, id int) bool {
	if len(r) == 0 {
		return false
	}

	var obj struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(r, &obj); err == nil && obj.ID != 0 {
		return obj.ID == id
	}

	var iri string
	if err := json.Unmarshal(r, &iri); err == nil {
		suffix := fmt.Sprintf("/%s/%d", resource, id)
		return strings.HasSuffix(iri, suffix) || strings.Contains(iri, suffix+"?")
	}

	return false
}

// Applicant is a prospective student in the remediation program.
type Applicant struct {
	ID          int    `json:"id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	OtherNames  string `json:"orther_names,omitempty"` // backend spelling
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Lga         Ref    `json:"lga,omitempty"`
	Address     string `json:"address,omitempty"`
	PassportURL string `json:"passport_url,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Application ties an applicant to a program with a review status.
type Application struct {
	ID                   int                   `json:"id,omitempty"`
	Applicant            Ref                   `json:"applicant,omitempty"`
	Program              Ref                   `json:"program,omitempty"`
	Status               string                `json:"status,omitempty"`
	CreatedAt            string                `json:"created_at,omitempty"`
	UpdatedAt            string                `json:"updated_at,omitempty"`
	OLevelResults        []OLevelResult        `json:"oLevelResults,omitempty"`
	ApplicationDocuments []ApplicationDocument `json:"applicationDocuments,omitempty"`
}

// Payment records a transaction made by an applicant.
type Payment struct {
	ID                   int    `json:"id,omitempty"`
	Applicant            Ref    `json:"applicant,omitempty"`
	Amount               string `json:"amount,omitempty"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
	UpdatedAt            string `json:"updated_at,omitempty"`
}

// User is a back-office admin account.
type User struct {
	ID    int      `json:"id,omitempty"`
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// State is a top-level geographic region.
type State struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Lgas []Lga  `json:"lgas,omitempty"`
}

// Lga is a local government area within a state.
type Lga struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	State Ref    `json:"state,omitempty"`
}

// Program is a remediation program applicants apply into.
type Program struct {
	ID          int    `json:"id,omitempty"`
	ProgramName string `json:"program_name"`
	Duration    int    `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// DocumentType is reference data for required upload kinds.
type DocumentType struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// ApplicationDocument is an uploaded file attached to an application.
type ApplicationDocument struct {
	ID           int    `json:"id,omitempty"`
	Application  Ref    `json:"application,omitempty"`
	DocumentType Ref    `json:"document_type,omitempty"`
	Document     Ref    `json:"document,omitempty"` // some API versions use this field
	DocumentURL  string `json:"document_url,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// OLevelResult is one exam sitting attached to an application.
type OLevelResult struct {
	ID             int             `json:"id,omitempty"`
	Application    Ref             `json:"application,omitempty"`
	ExamType       string          `json:"exam_type,omitempty"`
	ExamYear       string          `json:"exam_year,omitempty"`
	ExamNumber     string          `json:"exam_number,omitempty"`
	CenterName     string          `json:"center_name,omitempty"`
	CenterNumber   string          `json:"center_number,omitempty"`
	OLevelSubjects []OLevelSubject `json:"oLevelSubjects,omitempty"`
}

// OLevelSubject is a graded subject within an exam sitting.
type OLevelSubject struct {
	ID          int    `json:"id,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	Grade       string `json:"grade"`
	Name        string `json:"name,omitempty"` // legacy field on older records
}
