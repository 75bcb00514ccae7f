package models

// Result statuses for a submitted application.
const (
	ResultPending  = "pending"
	ResultApproved = "approved"
)

// Student is a submitted scholarship application. It is only ever created with
// payment_status "success" and a payment_reference that resolves to a verified
// transaction; roll number, exam center, result status and document URL are
// mutated later from the admin surface.
type Student struct {
	BaseModel
	FullName         string  `gorm:"column:full_name" json:"full_name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	DateOfBirth      string  `gorm:"column:date_of_birth" json:"date_of_birth"`
	Address          string  `json:"address"`
	SchoolName       string  `gorm:"column:school_name" json:"school_name"`
	Board            string  `json:"board"`
	ClassName        string  `gorm:"column:class_name" json:"class_name"`
	PaymentStatus    string  `gorm:"column:payment_status" json:"payment_status"`
	PaymentReference string  `gorm:"column:payment_reference" json:"payment_reference"`
	RollNumber       *string `gorm:"column:roll_number" json:"roll_number"`
	ExamCenter       *string `gorm:"column:exam_center" json:"exam_center"`
	ResultStatus     string  `gorm:"column:result_status" json:"result_status"`
	DocumentURL      string  `gorm:"column:document_url" json:"document_url,omitempty"`
}
