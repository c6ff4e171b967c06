package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/db"
	"github.com/leaf-logistics/rfq-service/internal/handlers"
	"github.com/leaf-logistics/rfq-service/internal/mail"
	"github.com/leaf-logistics/rfq-service/internal/repository"
	"github.com/leaf-logistics/rfq-service/internal/router"
	"github.com/leaf-logistics/rfq-service/internal/router/config"
	"github.com/leaf-logistics/rfq-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail)
	oversight := splitEmails(cfg.OversightCSV)

	rfqRepo := repository.NewPostgresRFQRepository(dbPool)
	quoteRepo := repository.NewPostgresQuoteRepository(dbPool)
	vendorRepo := repository.NewPostgresVendorRepository(dbPool)
	accountRepo := repository.NewPostgresAccountRepository(dbPool)

	locks := services.NewRFQLocker()
	rfqService := services.NewRFQService(rfqRepo, quoteRepo, vendorRepo, mailer, oversight, logger, locks)
	quoteService := services.NewQuoteService(quoteRepo, rfqRepo, mailer, cfg.SenderEmail, logger, locks)
	accountService := services.NewAccountService(accountRepo, vendorRepo, mailer, logger)

	rfqHandler := handlers.NewRFQHandler(rfqService, logger, 5*time.Second)
	quoteHandler := handlers.NewQuoteHandler(quoteService, logger, 5*time.Second)
	vendorHandler := handlers.NewVendorHandler(vendorRepo, logger, 5*time.Second)
	accountHandler := handlers.NewAccountHandler(accountService, logger, 5*time.Second)

	routes := router.InitRoutes(rfqHandler, quoteHandler, vendorHandler, accountHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}

func splitEmails(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
