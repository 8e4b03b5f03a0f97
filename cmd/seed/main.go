package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	"storyloom/internal/domain/models"
	docmodels "storyloom/internal/domain/models/docsystem"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/services"
	docsysSvc "storyloom/internal/domain/services/docsystem"
	"storyloom/internal/repository"
	"storyloom/internal/service"
	serviceAuth "storyloom/internal/service/auth"
	serviceDocsys "storyloom/internal/service/docsystem"
	"storyloom/internal/service/docsystem/converter"
	"storyloom/internal/vocabulary"

	"github.com/joho/godotenv"
)

const (
	demoEmail    = "demo@storyloom.local"
	demoName     = "Demo Writer"
	demoPassword = "storyloom-demo"
)

func main() {
	reset := flag.Bool("reset", false, "Drop and recreate all tables/collections before seeding")
	schemaOnly := flag.Bool("schema-only", false, "Only ensure the schema exists, don't seed data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *reset {
		log.Fatalf("BLOCKED: Cannot run --reset in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	log.Printf("Seeding %s store (environment: %s, prefix: %s)", cfg.StoreBackend, cfg.Environment, cfg.TablePrefix)

	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer store.Close(ctx)

	if *reset {
		log.Println("Resetting store...")
		if err := store.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset store: %v", err)
		}
	}

	if *schemaOnly {
		log.Println("Schema ready (schema-only mode)")
		return
	}

	vocab := vocabulary.Default()
	html := converter.NewHTMLConverter()

	// Register only touches the user repository, so no token issuer or session store is needed
	accounts := serviceAuth.NewAccountService(store.Users, nil, nil, cfg.RefreshTokenTTL, logger)
	styles := service.NewStyleService(store.Styles, store.Tx, vocab, logger)
	projects := serviceDocsys.NewProjectService(store.Projects, html, logger)
	docs := serviceDocsys.NewDocumentService(store.Projects, html, logger)

	user, err := ensureDemoUser(ctx, accounts, store)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Demo user: %s / %s (id %s)", demoEmail, demoPassword, user.ID)

	authorStyle, err := createStyle(ctx, styles, vocab, user.ID, style.KindAuthor, "Default voice")
	if err != nil {
		log.Fatalf("Failed to create author style: %v", err)
	}
	bookStyle, err := createStyle(ctx, styles, vocab, user.ID, style.KindBook, "Default book")
	if err != nil {
		log.Fatalf("Failed to create book style: %v", err)
	}

	novel, err := projects.CreateProject(ctx, &docsysSvc.CreateProjectRequest{
		UserID:        user.ID,
		Title:         "The Glass Orchard",
		ProjectType:   string(docmodels.ProjectTypeFiction),
		AuthorStyleID: &authorStyle.ID,
		BookStyleID:   &bookStyle.ID,
	})
	if err != nil {
		log.Fatalf("Failed to create novel: %v", err)
	}
	if err := seedChapters(ctx, docs, novel, user.ID, novelChapters); err != nil {
		log.Fatalf("Failed to seed novel chapters: %v", err)
	}
	log.Printf("Created project %q (%s)", novel.Title, novel.ID)

	guide, err := projects.CreateProject(ctx, &docsysSvc.CreateProjectRequest{
		UserID:      user.ID,
		Title:       "Keeping Bees in the City",
		ProjectType: string(docmodels.ProjectTypeNonfiction),
	})
	if err != nil {
		log.Fatalf("Failed to create nonfiction project: %v", err)
	}
	if _, err := docs.AddBatch(ctx, guide.ID, user.ID, guideOutline); err != nil {
		log.Fatalf("Failed to seed outline: %v", err)
	}
	log.Printf("Created project %q (%s)", guide.Title, guide.ID)

	log.Println("Seeding complete")
}

// ensureDemoUser registers the demo account, reusing it when it already exists
func ensureDemoUser(ctx context.Context, accounts services.AccountService, store *repository.Store) (*models.User, error) {
	user, err := accounts.Register(ctx, &services.RegisterRequest{
		Email:    demoEmail,
		Name:     demoName,
		Password: demoPassword,
	})
	if errors.Is(err, domain.ErrConflict) {
		return store.Users.GetByEmail(ctx, demoEmail)
	}
	return user, err
}

// createStyle stores a default style using the vocabulary defaults for every category
func createStyle(ctx context.Context, styles services.StyleService, vocab *vocabulary.Registry, userID string, kind style.Kind, name string) (*style.Style, error) {
	isDefault := true
	return styles.Create(ctx, userID, kind, &style.Fields{
		Name:         &name,
		DefaultStyle: &isDefault,
		Attributes:   vocab.Defaults(kind),
	})
}

type seedChapter struct {
	title   string
	content string
}

var novelChapters = []seedChapter{
	{
		title:   "Chapter 1 - Frost",
		content: "<p>The orchard had been glass for as long as Wren could remember. Every apple rang when the wind moved through the branches.</p><p>That morning one of them was missing.</p>",
	},
	{
		title:   "Chapter 2 - The Keeper",
		content: "<p>Old Tamsin kept the ledgers in a shed that smelled of wax and cold iron. She did not look up when Wren came in.</p>",
	},
}

var guideOutline = []docmodels.OutlineSection{
	{Title: "Why the City Needs Bees", Notes: "Urban forage, pollination and a short history of rooftop hives."},
	{Title: "Choosing a Site", Notes: "Rooftops, balconies and gardens; wind, sun and neighbours."},
	{Title: "Your First Season", Notes: "Installing a package, inspections and the first harvest."},
}

// seedChapters replaces the placeholder document with the given chapters
func seedChapters(ctx context.Context, docs docsysSvc.DocumentService, project *docmodels.Project, userID string, chapters []seedChapter) error {
	for _, ch := range chapters {
		if _, err := docs.AddDocument(ctx, project.ID, userID, &docsysSvc.AddDocumentRequest{
			Title:   ch.title,
			Content: ch.content,
		}); err != nil {
			return err
		}
	}

	for _, placeholder := range project.Documents {
		if err := docs.RemoveDocument(ctx, project.ID, userID, placeholder.ID); err != nil {
			return err
		}
	}
	return nil
}
