package dto

// CreateSchoolRequest is the body of POST /schools.
type CreateSchoolRequest struct {
	Name       string `json:"name"`
	CountyName string `json:"county_name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

// CreateStudentRequest is the body of POST /students.
type CreateStudentRequest struct {
	SchoolID      string `json:"school_id"`
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	Grade         int    `json:"grade"`
	Class         string `json:"class"`
	BirthDate     string `json:"birth_date"`
}
