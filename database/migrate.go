// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"edscrum/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations against the global connection.
func RunMigrations() {
	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("All migrations completed successfully")
}

// Migrate creates the schema, indexes, and seeds the award catalog. It is
// exported so tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Project{},
		&models.Sprint{},
		&models.UserStory{},
		&models.Team{},
		&models.Award{},
		&models.StudentAward{},
		&models.TeamAward{},
		&models.Score{},
		&models.Notification{},
	); err != nil {
		return err
	}

	createIndexes(db)
	return SeedAwardCatalog(db)
}

func createIndexes(db *gorm.DB) {
	// Ranking reads
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scores_user_points ON scores(user_id, total_points DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_scores_team_points ON scores(team_id, total_points DESC)")

	// Grant lookups during idempotency checks
	db.Exec("CREATE INDEX IF NOT EXISTS idx_student_awards_student ON student_awards(student_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_team_awards_team ON team_awards(team_id)")

	// Membership checks
	db.Exec("CREATE INDEX IF NOT EXISTS idx_teams_course ON teams(course_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_teams_sm ON teams(scrum_master_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_teams_po ON teams(product_owner_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_team_developers_user ON team_developers(user_id)")

	// Notification feed
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)")
}

// SeedAwardCatalog inserts the automatic award definitions the rule
// evaluator knows by name. Existing definitions are left untouched so
// teacher edits to points or descriptions survive restarts.
func SeedAwardCatalog(db *gorm.DB) error {
	catalog := []models.Award{
		{Name: "Equipa Formada", Description: "A tua equipa foi formada.", Points: 30, Type: models.AwardAutomatic, TargetType: models.TargetTeam},
		{Name: "Colaborador Estelar", Description: "Participaste activamente em 3 projetos diferentes.", Points: 70, Type: models.AwardAutomatic, TargetType: models.TargetIndividual},
		{Name: "Primeiro Salto", Description: "Criaste o teu primeiro sprint! Continua assim.", Points: 20, Type: models.AwardAutomatic, TargetType: models.TargetIndividual},
		{Name: "Sprint Artisan (5)", Description: "Criaste 5 sprints.", Points: 40, Type: models.AwardAutomatic, TargetType: models.TargetIndividual},
		{Name: "Sprint Veteran (10)", Description: "Criaste 10 sprints.", Points: 90, Type: models.AwardAutomatic, TargetType: models.TargetIndividual},
		{Name: "Estrela da Turma (Top 5)", Description: "Entraste no Top 5 do ranking da turma.", Points: 50, Type: models.AwardAutomatic, TargetType: models.TargetIndividual},
		{Name: "Mestre do Podium (Top 3)", Description: "Chegaste ao Top 3 do ranking da turma.", Points: 120, Type: models.AwardAutomatic, TargetType: models.TargetIndividual},
		{Name: "Projeto Concluído", Description: "A tua equipa concluiu um projeto.", Points: 100, Type: models.AwardAutomatic, TargetType: models.TargetTeam},
	}

	for _, award := range catalog {
		var count int64
		if err := db.Model(&models.Award{}).Where("name = ?", award.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&award).Error; err != nil {
			return err
		}
	}
	return nil
}
