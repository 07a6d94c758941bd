// seed-demo-data loads demo members, accounts and events into the database
// from a YAML fixture file. Intended for local development and demo
// environments, never production.
//
// Usage: go run ./scripts/seed-demo-data -file seed.yaml
//
// Database connection: Uses standard PG* environment variables
//
// MEMBER_CREDENTIALS_KEY must be set; national IDs are encrypted at rest.
//
// Flags:
//
//	-file      Path to the YAML fixture (default: seed.yaml)
//	-dry-run   Parse and report without writing (default: false)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/gran-oriente/logia-engine/pkg/crypto"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

type seedFile struct {
	Members []seedMember `yaml:"members"`
	Events  []seedEvent  `yaml:"events"`
}

type seedMember struct {
	FirstName  string       `yaml:"first_name"`
	LastName   string       `yaml:"last_name"`
	NationalID string       `yaml:"national_id"`
	Email      string       `yaml:"email"`
	Phone      string       `yaml:"phone"`
	Rank       string       `yaml:"rank"`
	Office     string       `yaml:"office"`
	Account    *seedAccount `yaml:"account"`
}

type seedAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type seedEvent struct {
	Title string    `yaml:"title"`
	Kind  string    `yaml:"kind"`
	Date  time.Time `yaml:"date"`
}

type envConfig struct {
	Host                 string `env:"PGHOST" env-default:"localhost"`
	Port                 int    `env:"PGPORT" env-default:"5432"`
	User                 string `env:"PGUSER" env-default:"logia"`
	Password             string `env:"PGPASSWORD"`
	Database             string `env:"PGDATABASE" env-default:"logia_engine"`
	SSLMode              string `env:"PGSSLMODE" env-default:"disable"`
	MemberCredentialsKey string `env:"MEMBER_CREDENTIALS_KEY"`
}

func main() {
	file := flag.String("file", "seed.yaml", "path to the YAML fixture")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	if err := run(*file, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string, dryRun bool) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse fixture: %w", err)
	}

	if err := validate(&seed); err != nil {
		return err
	}

	fmt.Printf("Fixture: %d members, %d events\n", len(seed.Members), len(seed.Events))
	if dryRun {
		fmt.Println("Dry run, nothing written")
		return nil
	}

	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if env.MemberCredentialsKey == "" {
		return fmt.Errorf("MEMBER_CREDENTIALS_KEY is required")
	}

	ctx := context.Background()

	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		env.User, env.Password, env.Host, env.Port, env.Database, env.SSLMode)
	db, err := database.NewConnection(ctx, &database.Config{URL: url})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer db.Close()

	encryptor, err := crypto.NewFieldEncryptor(env.MemberCredentialsKey)
	if err != nil {
		return fmt.Errorf("failed to create field encryptor: %w", err)
	}

	memberRepo := repositories.NewMemberRepository(db, encryptor)
	accountRepo := repositories.NewAccountRepository(db)
	eventRepo := repositories.NewEventRepository(db)

	for _, sm := range seed.Members {
		member := &models.Member{
			FirstName:  sm.FirstName,
			LastName:   sm.LastName,
			NationalID: sm.NationalID,
			Email:      sm.Email,
			Phone:      sm.Phone,
			Rank:       models.Rank(sm.Rank),
			Office:     sm.Office,
			Current:    true,
		}
		if err := memberRepo.Create(ctx, member); err != nil {
			return fmt.Errorf("failed to create member %s %s: %w", sm.FirstName, sm.LastName, err)
		}

		if sm.Account == nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(sm.Account.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", sm.Account.Email, err)
		}
		account := &models.Account{
			MemberID:     member.ID,
			Email:        sm.Account.Email,
			PasswordHash: string(hash),
			Role:         models.Role(sm.Account.Role),
			Rank:         member.Rank,
			Active:       true,
		}
		if err := accountRepo.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account %s: %w", sm.Account.Email, err)
		}
	}

	for _, se := range seed.Events {
		event := &models.Event{
			Title: se.Title,
			Kind:  models.EventKind(se.Kind),
			Date:  se.Date,
		}
		if err := eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event %q: %w", se.Title, err)
		}
	}

	fmt.Println("Seed complete")
	return nil
}

// validate rejects fixtures with invalid enum values before any write.
func validate(seed *seedFile) error {
	for _, sm := range seed.Members {
		if !models.IsValidRank(sm.Rank) {
			return fmt.Errorf("member %s %s: invalid rank %q", sm.FirstName, sm.LastName, sm.Rank)
		}
		if sm.Account != nil && !models.IsValidRole(sm.Account.Role) {
			return fmt.Errorf("account %s: invalid role %q", sm.Account.Email, sm.Account.Role)
		}
	}
	for _, se := range seed.Events {
		if !models.IsValidEventKind(se.Kind) {
			return fmt.Errorf("event %q: invalid kind %q", se.Title, se.Kind)
		}
	}
	return nil
}
