// services/rules.go - Automatic award rule evaluator
package services

import (
	"log"

	"edscrum/models"

	"gorm.io/gorm"
)

// Catalog names of the automatic awards. The catalog is authoritative: if a
// definition is missing at evaluation time the rule is skipped, never
// recreated on the fly.
const (
	AwardTeamFormed       = "Equipa Formada"
	AwardThreeProjects    = "Colaborador Estelar"
	AwardFirstSprint      = "Primeiro Salto"
	AwardFiveSprints      = "Sprint Artisan (5)"
	AwardTenSprints       = "Sprint Veteran (10)"
	AwardTopFive          = "Estrela da Turma (Top 5)"
	AwardTopThree         = "Mestre do Podium (Top 3)"
	AwardProjectCompleted = "Projeto Concluído"
)

// RuleEvaluator decides which automatic awards newly apply after a tracked
// fact changed, and grants them exactly once. Every grant is best-effort:
// a failure is logged and never blocks sibling rules or the mutation that
// triggered the evaluation.
type RuleEvaluator struct {
	db     *gorm.DB
	awards *AwardService
	facts  FactProvider
}

func NewRuleEvaluator(db *gorm.DB, awards *AwardService, facts FactProvider) *RuleEvaluator {
	return &RuleEvaluator{db: db, awards: awards, facts: facts}
}

// TeamFormed runs after a team is created: the team gets its formation
// award and every founding member is evaluated as a fresh join.
func (e *RuleEvaluator) TeamFormed(team *models.Team) {
	if _, err := e.awards.GrantToTeamByName(AwardTeamFormed, team.ID, team.ProjectID); err != nil {
		log.Printf("rule %q failed for team %d: %v", AwardTeamFormed, team.ID, err)
	}
	for _, id := range team.MemberIDs() {
		e.MemberJoined(team, id)
	}
}

// MemberJoined runs after a student is bound to a team in any role.
func (e *RuleEvaluator) MemberJoined(team *models.Team, userID uint) {
	role, err := e.facts.UserRole(userID)
	if err != nil {
		log.Printf("rule evaluation skipped for user %d: %v", userID, err)
		return
	}
	if role != models.RoleStudent {
		return
	}

	count, err := e.facts.DistinctProjectCount(userID)
	if err != nil {
		log.Printf("rule %q failed for user %d: %v", AwardThreeProjects, userID, err)
	} else if count >= 3 {
		if _, err := e.awards.GrantToStudentByName(AwardThreeProjects, userID, nil); err != nil {
			log.Printf("rule %q failed for user %d: %v", AwardThreeProjects, userID, err)
		}
	}

	e.ScoreChanged(userID)
}

// SprintCreated runs after a sprint is persisted. The count-based sprint
// milestones fire on exact thresholds so each grants at most once.
func (e *RuleEvaluator) SprintCreated(userID, projectID uint) {
	role, err := e.facts.UserRole(userID)
	if err != nil || role != models.RoleStudent {
		return
	}

	count, err := e.facts.SprintCountCreated(userID)
	if err != nil {
		log.Printf("sprint rules failed for user %d: %v", userID, err)
		return
	}

	switch count {
	case 1:
		pid := projectID
		if _, err := e.awards.GrantToStudentByName(AwardFirstSprint, userID, &pid); err != nil {
			log.Printf("rule %q failed for user %d: %v", AwardFirstSprint, userID, err)
		}
	case 5:
		if _, err := e.awards.GrantToStudentByName(AwardFiveSprints, userID, nil); err != nil {
			log.Printf("rule %q failed for user %d: %v", AwardFiveSprints, userID, err)
		}
	case 10:
		if _, err := e.awards.GrantToStudentByName(AwardTenSprints, userID, nil); err != nil {
			log.Printf("rule %q failed for user %d: %v", AwardTenSprints, userID, err)
		}
	}

	e.ScoreChanged(userID)
}

// ProjectCompleted runs after a project transitions to CONCLUIDO. Every
// team on the project earns the completion award in that project's context.
func (e *RuleEvaluator) ProjectCompleted(projectID uint) {
	var teams []models.Team
	if err := e.db.Preload("Developers").Where("project_id = ?", projectID).Find(&teams).Error; err != nil {
		log.Printf("rule %q failed loading teams for project %d: %v", AwardProjectCompleted, projectID, err)
		return
	}

	pid := projectID
	for _, team := range teams {
		if _, err := e.awards.GrantToTeamByName(AwardProjectCompleted, team.ID, &pid); err != nil {
			log.Printf("rule %q failed for team %d: %v", AwardProjectCompleted, team.ID, err)
			continue
		}
		for _, memberID := range team.MemberIDs() {
			e.ScoreChanged(memberID)
		}
	}
}

// ScoreChanged re-checks the ranking milestones for every course the
// student is enrolled in. A ranking grant raises the student's own score,
// so evaluation repeats until no rule newly fires; idempotent grants
// guarantee termination.
func (e *RuleEvaluator) ScoreChanged(userID uint) {
	courseIDs, err := e.facts.EnrolledCourseIDs(userID)
	if err != nil {
		log.Printf("ranking rules failed for user %d: %v", userID, err)
		return
	}

	for {
		granted := false
		for _, courseID := range courseIDs {
			rank, err := e.facts.CourseRank(userID, courseID)
			if err != nil {
				log.Printf("ranking rules failed for user %d in course %d: %v", userID, courseID, err)
				continue
			}
			if rank == 0 {
				continue
			}

			if rank <= 5 {
				ok, err := e.awards.GrantToStudentByName(AwardTopFive, userID, nil)
				if err != nil {
					log.Printf("rule %q failed for user %d: %v", AwardTopFive, userID, err)
				}
				granted = granted || ok
			}
			if rank <= 3 {
				ok, err := e.awards.GrantToStudentByName(AwardTopThree, userID, nil)
				if err != nil {
					log.Printf("rule %q failed for user %d: %v", AwardTopThree, userID, err)
				}
				granted = granted || ok
			}
		}
		if !granted {
			return
		}
	}
}
