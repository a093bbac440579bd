package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/models"
)

func TestApplyTeamToProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db, newTestLogger())

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	mate := createStudent(t, db, "mate")
	team := createTeam(t, db, "Alpha", leader.ID, mate.ID)

	t.Run("leader files the application and reserves the team", func(t *testing.T) {
		application, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
			TeamID:     team.ID,
			ProjectID:  project.ID,
			Motivation: "we like graphs",
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, application.Status)

		var reloaded models.ProjectTeam
		require.NoError(t, db.First(&reloaded, team.ID).Error)
		require.NotNil(t, reloaded.ProjectID)
		assert.Equal(t, project.ID, *reloaded.ProjectID)
		assert.Equal(t, models.StatusPending, reloaded.Status)
	})

	t.Run("reserved team cannot apply elsewhere", func(t *testing.T) {
		other := createProject(t, db, professor.ID)
		_, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
			TeamID:    team.ID,
			ProjectID: other.ID,
		})
		assert.True(t, IsKind(err, KindAlreadyAssigned))
	})

	t.Run("non-leader is refused", func(t *testing.T) {
		fresh := createTeam(t, db, "Beta", createStudent(t, db, "beta-lead").ID, mate.ID)
		_, err := svc.ApplyTeamToProject(mate.ID, ApplyToProjectInput{
			TeamID:    fresh.ID,
			ProjectID: project.ID,
		})
		assert.True(t, IsKind(err, KindNotLeader))
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
			TeamID:    team.ID,
			ProjectID: 99999,
		})
		assert.True(t, IsKind(err, KindNotFound))
	})
}

func TestApproveApplication(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db, newTestLogger())

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)

	winnerLeader := createStudent(t, db, "winner-leader")
	winner := createTeam(t, db, "Winner", winnerLeader.ID)
	loserLeader := createStudent(t, db, "loser-leader")
	loser := createTeam(t, db, "Loser", loserLeader.ID)

	winning, err := svc.ApplyTeamToProject(winnerLeader.ID, ApplyToProjectInput{
		TeamID: winner.ID, ProjectID: project.ID,
	})
	require.NoError(t, err)
	losing, err := svc.ApplyTeamToProject(loserLeader.ID, ApplyToProjectInput{
		TeamID: loser.ID, ProjectID: project.ID,
	})
	require.NoError(t, err)

	t.Run("only the owning professor approves", func(t *testing.T) {
		stranger := createProfessor(t, db, "stranger")
		_, err := svc.ApproveApplication(winning.ID, stranger.ID)
		assert.True(t, IsKind(err, KindNotOwner))
	})

	t.Run("approval assigns the team and rejects siblings", func(t *testing.T) {
		approved, err := svc.ApproveApplication(winning.ID, professor.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)

		var winnerTeam models.ProjectTeam
		require.NoError(t, db.First(&winnerTeam, winner.ID).Error)
		assert.Equal(t, models.StatusApproved, winnerTeam.Status)
		require.NotNil(t, winnerTeam.ProjectID)
		assert.Equal(t, project.ID, *winnerTeam.ProjectID)

		// Sibling application flips to Rejected and its team's reservation
		// is released.
		var loserApplication models.TeamApplication
		require.NoError(t, db.First(&loserApplication, losing.ID).Error)
		assert.Equal(t, models.StatusRejected, loserApplication.Status)

		var loserTeam models.ProjectTeam
		require.NoError(t, db.First(&loserTeam, loser.ID).Error)
		assert.Equal(t, models.StatusRejected, loserTeam.Status)
		assert.Nil(t, loserTeam.ProjectID)
	})

	t.Run("decided application cannot be approved again", func(t *testing.T) {
		_, err := svc.ApproveApplication(losing.ID, professor.ID)
		assert.True(t, IsKind(err, KindInvalidTransition))
	})

	t.Run("second pending application loses the race", func(t *testing.T) {
		lateLeader := createStudent(t, db, "late-leader")
		late := createTeam(t, db, "Late", lateLeader.ID)
		lateApplication, err := svc.ApplyTeamToProject(lateLeader.ID, ApplyToProjectInput{
			TeamID: late.ID, ProjectID: project.ID,
		})
		require.NoError(t, err)

		_, err = svc.ApproveApplication(lateApplication.ID, professor.ID)
		assert.True(t, IsKind(err, KindAlreadyAssigned))
	})
}

func TestWithdrawApplication(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db, newTestLogger())

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)

	application, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
		TeamID: team.ID, ProjectID: project.ID,
	})
	require.NoError(t, err)

	t.Run("only the leader withdraws", func(t *testing.T) {
		outsider := createStudent(t, db, "outsider")
		err := svc.WithdrawApplication(application.ID, outsider.ID)
		assert.True(t, IsKind(err, KindNotLeader))
	})

	t.Run("withdrawal deletes the application and releases the team", func(t *testing.T) {
		require.NoError(t, svc.WithdrawApplication(application.ID, leader.ID))

		var count int64
		require.NoError(t, db.Unscoped().Model(&models.TeamApplication{}).
			Where("id = ?", application.ID).Count(&count).Error)
		assert.Zero(t, count)

		var reloaded models.ProjectTeam
		require.NoError(t, db.First(&reloaded, team.ID).Error)
		assert.Nil(t, reloaded.ProjectID)
		assert.Equal(t, models.StatusPending, reloaded.Status)
	})

	t.Run("approved assignment survives a stale withdrawal", func(t *testing.T) {
		again, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
			TeamID: team.ID, ProjectID: project.ID,
		})
		require.NoError(t, err)
		_, err = svc.ApproveApplication(again.ID, professor.ID)
		require.NoError(t, err)

		require.NoError(t, svc.WithdrawApplication(again.ID, leader.ID))

		var reloaded models.ProjectTeam
		require.NoError(t, db.First(&reloaded, team.ID).Error)
		require.NotNil(t, reloaded.ProjectID)
		assert.Equal(t, models.StatusApproved, reloaded.Status)
	})
}

func TestUpdateTeamStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db, newTestLogger())

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)

	application, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
		TeamID: team.ID, ProjectID: project.ID,
	})
	require.NoError(t, err)

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.UpdateTeamStatus(team.ID, "Maybe", professor.ID)
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("approval mirrors onto the application", func(t *testing.T) {
		updated, err := svc.UpdateTeamStatus(team.ID, models.StatusApproved, professor.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)

		var reloaded models.TeamApplication
		require.NoError(t, db.First(&reloaded, application.ID).Error)
		assert.Equal(t, models.StatusApproved, reloaded.Status)
	})

	t.Run("second approved team is refused", func(t *testing.T) {
		otherLeader := createStudent(t, db, "other-leader")
		other := createTeam(t, db, "Beta", otherLeader.ID)
		_, err := svc.ApplyTeamToProject(otherLeader.ID, ApplyToProjectInput{
			TeamID: other.ID, ProjectID: project.ID,
		})
		require.NoError(t, err)

		_, err = svc.UpdateTeamStatus(other.ID, models.StatusApproved, professor.ID)
		assert.True(t, IsKind(err, KindAlreadyAssigned))
	})

	t.Run("rejection releases the project slot", func(t *testing.T) {
		updated, err := svc.UpdateTeamStatus(team.ID, models.StatusRejected, professor.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, updated.Status)

		var reloaded models.ProjectTeam
		require.NoError(t, db.First(&reloaded, team.ID).Error)
		assert.Nil(t, reloaded.ProjectID)
	})

	t.Run("team without a project", func(t *testing.T) {
		floating := createTeam(t, db, "Floating", createStudent(t, db, "floater").ID)
		_, err := svc.UpdateTeamStatus(floating.ID, models.StatusApproved, professor.ID)
		assert.True(t, IsKind(err, KindValidation))
	})
}

func TestListTeamApplications(t *testing.T) {
	db := newTestDB(t)
	svc := NewApplicationService(db, newTestLogger())

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	mate := createStudent(t, db, "mate")
	team := createTeam(t, db, "Alpha", leader.ID, mate.ID)

	_, err := svc.ApplyTeamToProject(leader.ID, ApplyToProjectInput{
		TeamID: team.ID, ProjectID: project.ID, Motivation: "pick us",
	})
	require.NoError(t, err)

	views, err := svc.ListTeamApplications(mate.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, project.ID, views[0].ProjectID)
	assert.Equal(t, "pick us", views[0].Motivation)

	outsider := createStudent(t, db, "outsider")
	views, err = svc.ListTeamApplications(outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}
