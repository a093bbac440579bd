package services

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/config"
	"projecthub/models"
)

// newTestDB opens an isolated in-memory database with the full schema. A
// single connection keeps transactions on the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func createStudent(t *testing.T, db *gorm.DB, username string) *models.Student {
	t.Helper()

	user := models.User{
		Username:     username,
		FullName:     username + " Example",
		Email:        username + "@university.edu",
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)

	student := models.Student{
		UserID:     user.ID,
		Department: "CSE",
		Year:       models.YearFourth,
	}
	require.NoError(t, db.Create(&student).Error)
	return &student
}

func createProfessor(t *testing.T, db *gorm.DB, username string) *models.Professor {
	t.Helper()

	user := models.User{
		Username:     username,
		FullName:     username + " Example",
		Email:        username + "@university.edu",
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleProfessor,
	}
	require.NoError(t, db.Create(&user).Error)

	professor := models.Professor{
		UserID:     user.ID,
		Department: "CSE",
		Title:      "Asst. Prof",
	}
	require.NoError(t, db.Create(&professor).Error)
	return &professor
}

func createProject(t *testing.T, db *gorm.DB, professorID uint) *models.Project {
	t.Helper()

	project := models.Project{
		Title:       fmt.Sprintf("Project %d", time.Now().UnixNano()),
		Description: "A final-year project",
		Year:        models.YearFourth,
		Status:      models.ProjectOpen,
		ProfessorID: professorID,
	}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

func createMilestone(t *testing.T, db *gorm.DB, projectID uint, due time.Time) *models.Milestone {
	t.Helper()

	milestone := models.Milestone{
		ProjectID: projectID,
		Title:     "Milestone",
		DueDate:   &due,
		Weightage: 25,
	}
	require.NoError(t, db.Create(&milestone).Error)
	return &milestone
}

// createTeam builds a team led by the first student with the given members.
func createTeam(t *testing.T, db *gorm.DB, name string, memberIDs ...uint) *models.ProjectTeam {
	t.Helper()
	require.NotEmpty(t, memberIDs)

	team := models.ProjectTeam{
		Name:     name,
		LeaderID: memberIDs[0],
		Status:   models.StatusPending,
	}
	require.NoError(t, db.Create(&team).Error)
	for _, id := range memberIDs {
		require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, StudentID: id}).Error)
	}
	return &team
}

// assignTeam marks a team as the approved team of a project.
func assignTeam(t *testing.T, db *gorm.DB, team *models.ProjectTeam, projectID uint) {
	t.Helper()
	require.NoError(t, db.Model(team).Updates(map[string]interface{}{
		"project_id": projectID,
		"status":     models.StatusApproved,
	}).Error)
}

func daysFromNow(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}
