// Command seed populates a development database with a back-office admin
// user, the standard plan catalogue and a handful of demo members.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/gymtech/backoffice-api/pkg/config"
	"github.com/gymtech/backoffice-api/pkg/database"
)

type seedPlan struct {
	Name           string
	DurationMonths int
	PriceCents     int64
	Description    string
}

var plans = []seedPlan{
	{"Monthly", 1, 9900, "Month-to-month access"},
	{"Quarterly", 3, 26900, "Three months, billed upfront"},
	{"Semiannual", 6, 47900, "Six months, billed upfront"},
	{"Annual", 12, 83900, "Twelve months, billed upfront"},
}

func main() {
	var (
		adminEmail    string
		adminPassword string
		withDemoData  bool
	)
	flag.StringVar(&adminEmail, "admin-email", "admin@gymtech.local", "Admin user email")
	flag.StringVar(&adminPassword, "admin-password", "changeme", "Admin user password")
	flag.BoolVar(&withDemoData, "demo", false, "Also insert demo members and charges")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	planIDs, err := seedPlans(db)
	if err != nil {
		log.Fatalf("failed to seed plans: %v", err)
	}
	if withDemoData {
		if err := seedMembers(db, planIDs); err != nil {
			log.Fatalf("failed to seed members: %v", err)
		}
	}

	fmt.Println("seed complete")
}

func seedAdmin(db *sqlx.DB, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'ADMIN', true, $5, $5)
		ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), email, string(hash), "Administrator", now)
	return err
}

func seedPlans(db *sqlx.DB) (map[string]string, error) {
	now := time.Now().UTC()
	ids := make(map[string]string, len(plans))
	for _, p := range plans {
		id := uuid.NewString()
		var existing string
		err := db.Get(&existing, "SELECT id FROM plans WHERE name = $1", p.Name)
		if err == nil {
			ids[p.Name] = existing
			continue
		}
		_, err = db.Exec(`
			INSERT INTO plans (id, name, duration_months, price_cents, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			id, p.Name, p.DurationMonths, p.PriceCents, p.Description, now)
		if err != nil {
			return nil, err
		}
		ids[p.Name] = id
	}
	return ids, nil
}

func seedMembers(db *sqlx.DB, planIDs map[string]string) error {
	now := time.Now().UTC()
	members := []struct {
		Name     string
		CPF      string
		Email    string
		Plan     string
		Enrolled time.Time
	}{
		{"Ana Souza", "11122233344", "ana@example.com", "Monthly", now.AddDate(0, 0, -20)},
		{"Bruno Lima", "22233344455", "bruno@example.com", "Quarterly", now.AddDate(0, -2, 0)},
		{"Carla Mendes", "33344455566", "carla@example.com", "Annual", now.AddDate(0, -11, 0)},
	}
	for _, m := range members {
		planID, ok := planIDs[m.Plan]
		if !ok {
			return fmt.Errorf("unknown plan %s", m.Plan)
		}
		var plan struct {
			DurationMonths int   `db:"duration_months"`
			PriceCents     int64 `db:"price_cents"`
		}
		if err := db.Get(&plan, "SELECT duration_months, price_cents FROM plans WHERE id = $1", planID); err != nil {
			return err
		}
		expiration := m.Enrolled.AddDate(0, plan.DurationMonths, 0)
		_, err := db.Exec(`
			INSERT INTO students (id, name, cpf, birth_date, phone, email, address, plan_id, enrollment_date, expiration_date, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, '', $5, '', $6, $7, $8, 'active', $9, $9)
			ON CONFLICT (cpf) DO NOTHING`,
			uuid.NewString(), m.Name, m.CPF, now.AddDate(-30, 0, 0), m.Email, planID, m.Enrolled, expiration, now)
		if err != nil {
			return err
		}

		var studentID string
		if err := db.Get(&studentID, "SELECT id FROM students WHERE cpf = $1", m.CPF); err != nil {
			return err
		}
		// One settled enrollment payment per member, carrying the plan
		// reference so per-plan realized revenue has data to show.
		var existing int
		if err := db.Get(&existing, "SELECT COUNT(*) FROM payments WHERE student_id = $1", studentID); err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		_, err = db.Exec(`
			INSERT INTO payments (id, student_id, plan_id, amount_cents, due_date, payment_date, status, method, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5, 'paid', 'pix', $6, $6)`,
			uuid.NewString(), studentID, planID, plan.PriceCents, m.Enrolled, now)
		if err != nil {
			return err
		}
	}
	return nil
}
