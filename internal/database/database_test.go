package database

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
)

func mustStartPostgresContainer() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "blogapi"
		dbPwd  = "password"
		dbUser = "blogapi"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	database = dbName
	password = dbPwd
	username = dbUser

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	host = dbHost
	port = dbPort.Port()

	// The plain database/sql path reads the environment at call time
	os.Setenv("DB_HOST", dbHost)
	os.Setenv("DB_PORT", dbPort.Port())
	os.Setenv("DB_USER", dbUser)
	os.Setenv("DB_PASSWORD", dbPwd)
	os.Setenv("DB_NAME", dbName)
	os.Setenv("DB_SSLMODE", "disable")

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := mustStartPostgresContainer()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("could not teardown postgres container: %v", err)
	}

	os.Exit(code)
}

func TestNew(t *testing.T) {
	srv := New()
	if srv == nil {
		t.Fatal("New() returned nil")
	}
}

func TestHealth(t *testing.T) {
	srv := New()

	stats := srv.Health()

	if stats["status"] != "up" {
		t.Fatalf("expected status to be up, got %s", stats["status"])
	}
	if _, ok := stats["error"]; ok {
		t.Fatalf("expected error not to be present")
	}
	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}

func TestMigrationsEnforceUniqueReactions(t *testing.T) {
	db := New().GetDB()

	user := models.User{Username: "uniq", Email: "uniq@example.com", Password: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	post := models.Post{UserID: user.ID, Name: "p", Title: "P", Text: "t", IsActive: true}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := db.Create(&models.Like{UserID: user.ID, PostID: post.ID, IsLike: true}).Error; err != nil {
		t.Fatalf("create like: %v", err)
	}

	// The unique index on (user_id, post_id) must reject a second row, and
	// TranslateError must surface it as gorm.ErrDuplicatedKey
	err := db.Create(&models.Like{UserID: user.ID, PostID: post.ID, IsLike: false}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestInitializeCreatesSchema(t *testing.T) {
	d, err := NewDatabase()
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer d.Close()

	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Idempotent
	if err := d.Initialize(); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	var n int
	err = d.DB.QueryRow(`SELECT count(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name IN ('users', 'posts', 'images', 'comments', 'likes', 'comment_likes', 'post_views')`).Scan(&n)
	if err != nil {
		t.Fatalf("querying schema: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 tables, found %d", n)
	}
}

func TestClose(t *testing.T) {
	srv := New()

	if srv.Close() != nil {
		t.Fatalf("expected Close() to return nil")
	}
}
