package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Abraxas-365/deckgen/internal/ai/embeddings"
	"github.com/Abraxas-365/deckgen/internal/ai/imagegen"
	"github.com/Abraxas-365/deckgen/internal/ai/textgen"
	"github.com/Abraxas-365/deckgen/migrations"
	"github.com/Abraxas-365/deckgen/pkg/fsx"
	"github.com/Abraxas-365/deckgen/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/deckgen/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/export/exportapi"
	"github.com/Abraxas-365/deckgen/presentation/export/exportinfra"
	"github.com/Abraxas-365/deckgen/presentation/export/exportsrv"
	"github.com/Abraxas-365/deckgen/presentation/export/worker"
	"github.com/Abraxas-365/deckgen/presentation/material/materialapi"
	"github.com/Abraxas-365/deckgen/presentation/material/materialinfra"
	"github.com/Abraxas-365/deckgen/presentation/material/materialsrv"
	"github.com/Abraxas-365/deckgen/presentation/page/pageapi"
	"github.com/Abraxas-365/deckgen/presentation/page/pageinfra"
	"github.com/Abraxas-365/deckgen/presentation/page/pagesrv"
	"github.com/Abraxas-365/deckgen/presentation/project/projectapi"
	"github.com/Abraxas-365/deckgen/presentation/project/projectinfra"
	"github.com/Abraxas-365/deckgen/presentation/project/projectsrv"
	"github.com/Abraxas-365/deckgen/presentation/template/templateapi"
	"github.com/Abraxas-365/deckgen/presentation/template/templateinfra"
	"github.com/Abraxas-365/deckgen/presentation/template/templatesrv"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const exportQueueName = "export_jobs"

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem

	// Services
	ProjectService  *projectsrv.Service
	PageService     *pagesrv.Service
	MaterialService *materialsrv.Service
	TemplateService *templatesrv.Service
	ExportService   *exportsrv.Service

	// Background processing
	ExportWorker *worker.ExportWorker

	// API Handlers
	ProjectHandlers  *projectapi.Handlers
	PageHandlers     *pageapi.Handlers
	MaterialHandlers *materialapi.Handlers
	TemplateHandlers *templateapi.Handlers
	ExportHandlers   *exportapi.Handlers
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Schema Migrations
	c.runMigrations()

	// 3. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 4. File Storage (S3 or local for development)
	switch os.Getenv("STORAGE_DRIVER") {
	case "local":
		dir := os.Getenv("STORAGE_DIR")
		if dir == "" {
			dir = "./data"
		}
		c.FileSystem = fsxlocal.NewLocalFileSystem(dir)
		logx.Infof("Using local file storage at %s", dir)
	default:
		awsRegion := os.Getenv("AWS_REGION")
		awsBucket := os.Getenv("AWS_BUCKET")
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
		if err != nil {
			logx.Fatalf("unable to load SDK config, %v", err)
		}
		c.FileSystem = fsxs3.NewS3FileSystem(s3.NewFromConfig(cfg), awsBucket, "deckgen")
	}
}

func (c *Container) runMigrations() {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logx.Fatalf("Failed to load migrations: %v", err)
	}

	driver, err := postgres.WithInstance(c.DB.DB, &postgres.Config{})
	if err != nil {
		logx.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		logx.Fatalf("Failed to create migrator: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logx.Fatalf("Failed to run migrations: %v", err)
	}
}

func (c *Container) initServices() {
	// --- Repositories ---
	projectRepo := projectinfra.NewPostgresProjectRepository(c.DB)
	pageRepo := pageinfra.NewPostgresPageRepository(c.DB)
	materialRepo := materialinfra.NewPostgresMaterialRepository(c.DB)
	templateRepo := templateinfra.NewPostgresTemplateRepository(c.DB)
	jobRepo := exportinfra.NewPostgresJobRepository(c.DB)

	// --- Queue ---
	queue := exportinfra.NewRedisQueue(c.Redis, exportQueueName)

	// --- AI Generators ---
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logx.Warn("OPENAI_API_KEY is not set, generation endpoints will fail")
	}

	imageModel := os.Getenv("IMAGE_MODEL")
	if imageModel == "" {
		imageModel = "dall-e-3"
	}

	textGen := textgen.NewGenerator(apiKey)
	imageGen := imagegen.NewGenerator(apiKey, imageModel)
	embedGen := embeddings.NewGenerator(apiKey)

	// --- Share Tokens ---
	shareSecret := os.Getenv("SHARE_SECRET")
	if shareSecret == "" {
		logx.Warn("SHARE_SECRET is not set, using default (unsafe for production)")
		shareSecret = "super-secret-key-please-change-me-in-production"
	}

	// --- Domain Services ---
	c.ProjectService = projectsrv.NewService(projectRepo, pageRepo, materialRepo, textGen, []byte(shareSecret))
	c.PageService = pagesrv.NewService(pageRepo, projectRepo, templateRepo, imageGen, c.FileSystem)
	c.MaterialService = materialsrv.NewService(materialRepo, projectRepo, textGen, c.FileSystem)
	c.TemplateService = templatesrv.NewService(templateRepo, embedGen, c.FileSystem)
	c.ExportService = exportsrv.NewService(projectRepo, pageRepo, jobRepo, queue, c.FileSystem)

	// --- Background Worker ---
	workers := 2
	if n, err := strconv.Atoi(os.Getenv("EXPORT_WORKERS")); err == nil && n > 0 {
		workers = n
	}
	c.ExportWorker = worker.NewExportWorker(c.ExportService, queue, workers)

	// --- Handlers ---
	c.ProjectHandlers = projectapi.NewHandlers(c.ProjectService)
	c.PageHandlers = pageapi.NewHandlers(c.PageService)
	c.MaterialHandlers = materialapi.NewHandlers(c.MaterialService)
	c.TemplateHandlers = templateapi.NewHandlers(c.TemplateService)
	c.ExportHandlers = exportapi.NewHandlers(c.ExportService)
}
