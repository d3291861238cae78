package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/classroom-tasks/config"
	"github.com/oksasatya/classroom-tasks/internal/application"
	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
	"github.com/oksasatya/classroom-tasks/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/classroom-tasks/internal/infrastructure/postgres"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
)

// Seeds a demo teacher with one student. Re-running keeps existing accounts.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var users repository.UserRepository
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		users = pginfra.NewUserRepository(pool)
	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		users = mongodb.NewUserRepository(client.Database(cfg.MongoDB))
	default:
		log.Fatalf("nothing to seed for STORE_DRIVER=%q", cfg.StoreDriver)
	}

	svc := application.NewUserService(users, nil, logger)
	const password = "password123"

	teacher, err := ensureUser(ctx, svc, users, application.SignupInput{
		Email: "teacher@classroom.test", Password: password, Role: string(entity.RoleTeacher),
	})
	if err != nil {
		log.Fatalf("failed to seed teacher: %v", err)
	}
	fmt.Printf("seeded teacher: id=%s email=%s password=%s\n", teacher.ID, teacher.Email, password)

	student, err := ensureUser(ctx, svc, users, application.SignupInput{
		Email: "student@classroom.test", Password: password, Role: string(entity.RoleStudent), TeacherID: teacher.ID,
	})
	if err != nil {
		log.Fatalf("failed to seed student: %v", err)
	}
	fmt.Printf("seeded student: id=%s email=%s password=%s teacher=%s\n", student.ID, student.Email, password, teacher.ID)
}

func ensureUser(ctx context.Context, svc *application.UserService, users repository.UserRepository, in application.SignupInput) (*entity.User, error) {
	u, err := svc.Signup(ctx, in)
	if errors.Is(err, repository.ErrEmailTaken) {
		return users.GetByEmail(ctx, in.Email)
	}
	return u, err
}
