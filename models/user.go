package models

import "gorm.io/gorm"

// User roles
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

// Academic year labels
const (
	YearFirst  = "1st Year"
	YearSecond = "2nd Year"
	YearThird  = "3rd Year"
	YearFourth = "4th Year"
)

// User is the authentication principal; role-specific data lives on the
// Student/Professor/Admin profile rows
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	FullName     string `gorm:"not null" json:"full_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"not null;index" json:"role"` // student, professor, admin

	// Relations
	Student   *Student   `gorm:"foreignKey:UserID" json:"student,omitempty"`
	Professor *Professor `gorm:"foreignKey:UserID" json:"professor,omitempty"`
	Admin     *Admin     `gorm:"foreignKey:UserID" json:"admin,omitempty"`
}

// Student profile with collaborator-finder fields
type Student struct {
	gorm.Model
	UserID       uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	Department   string   `json:"department"` // CSE, EEE, ME, AI, ECE
	Year         string   `json:"year"`
	Skills       []string `gorm:"type:jsonb;serializer:json" json:"skills"`
	Interests    []string `gorm:"type:jsonb;serializer:json" json:"interests"`
	Availability string   `json:"availability"`

	User User `json:"-"`
}

type Professor struct {
	gorm.Model
	UserID     uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Department string `json:"department"`
	Title      string `json:"title"` // Asst. Prof, Assoc. Prof, Prof

	User User `json:"-"`
}

type Admin struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	User User `json:"-"`
}
