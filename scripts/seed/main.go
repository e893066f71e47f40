// Command seed provisions development users and draft documents so the
// workflow can be exercised end to end against a fresh database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edu-docflow-api/internal/models"
	"github.com/noah-isme/edu-docflow-api/internal/repository"
	"github.com/noah-isme/edu-docflow-api/pkg/config"
	"github.com/noah-isme/edu-docflow-api/pkg/database"
)

type seedUser struct {
	email    string
	name     string
	role     models.UserRole
	password string
}

func main() {
	var (
		educationID string
		withDocs    bool
	)
	flag.StringVar(&educationID, "education", "edu-demo-1", "education id to seed documents for")
	flag.BoolVar(&withDocs, "docs", true, "seed draft documents alongside users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := []seedUser{
		{email: "teacher@example.com", name: "Kim Teacher", role: models.RoleTeacher, password: "teacher123"},
		{email: "instructor@example.com", name: "Lee Instructor", role: models.RoleInstructor, password: "instructor123"},
		{email: "admin@example.com", name: "Park Admin", role: models.RoleAdmin, password: "admin123"},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.email, err)
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, now(), now())
			ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role`,
			uuid.NewString(), u.email, string(hash), u.name, u.role)
		if err != nil {
			log.Fatalf("seed user %s: %v", u.email, err)
		}
		fmt.Printf("user %-25s %s / %s\n", u.email, u.role, u.password)
	}

	if !withDocs {
		return
	}

	attendanceRepo := repository.NewAttendanceSheetRepository(db)
	sheet, err := attendanceRepo.GetOrCreate(ctx, educationID)
	if err != nil {
		log.Fatalf("seed attendance sheet: %v", err)
	}
	fmt.Printf("attendance sheet %s (%s)\n", sheet.ID, sheet.Status)

	for _, docType := range models.SimpleDocumentTypes {
		repo := repository.NewSubmissionRepository(db, docType)
		doc, err := repo.GetOrCreate(ctx, educationID)
		if err != nil {
			log.Fatalf("seed %s: %v", docType, err)
		}
		fmt.Printf("document %-25s %s (%s)\n", docType, doc.ID, doc.Status)
	}

	lessonRepo := repository.NewSubmissionRepository(db, models.DocTypeLessonPlan)
	lesson, err := lessonRepo.GetByEducationID(ctx, educationID)
	if err == nil && lesson.Status == models.SubmissionDraft {
		payload, _ := json.Marshal(models.LessonPlanPayload{
			Title: "Robotics basics",
			Body:  "Weekly introduction to block coding and simple robots.",
			Sessions: []models.LessonPlanSession{
				{Order: 1, Topic: "Orientation", Goal: "Meet the class"},
				{Order: 2, Topic: "First robot", Goal: "Assemble and run"},
			},
		})
		lesson.Payload = payload
		if err := lessonRepo.Upsert(ctx, lesson); err != nil {
			log.Fatalf("seed lesson plan payload: %v", err)
		}
		fmt.Println("lesson plan payload filled")
	}
}
