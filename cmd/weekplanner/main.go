package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	adapthttp "weekplanner/internal/adapter/http"
	"weekplanner/internal/adapter/memory"
	"weekplanner/internal/adapter/postgres"
	"weekplanner/internal/adapter/seed"
	"weekplanner/internal/app"
	"weekplanner/internal/config"
	"weekplanner/internal/domain"
)

type stores struct {
	recipes   domain.RecipeRepository
	favorites domain.FavoriteRepository
	weekplans domain.WeekplanStore
	users     domain.UserRepository
	sessions  domain.SessionRepository
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.BindFlags(pflag.CommandLine)
	pflag.Parse()

	st, err := openStores(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = st.close() }()

	ctx := context.Background()
	if cfg.SeedFile != "" {
		recipes, err := seed.Load(cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		added, err := seed.Apply(ctx, st.recipes, recipes)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded %d of %d recipes from %s", added, len(recipes), cfg.SeedFile)
	}

	oidcConfig, err := setupOIDC(ctx, cfg.OIDC)
	if err != nil {
		log.Fatalf("oidc: %v", err)
	}

	var editorOpts []app.EditorOption
	if cfg.StrictRecipes {
		editorOpts = append(editorOpts, app.WithStrictRecipes())
	}

	recipeSvc := app.NewRecipeService(st.recipes, st.favorites)
	weekplanSvc := app.NewWeekplanService(st.weekplans, recipeSvc.Catalog(), editorOpts...)
	authSvc := app.NewAuthService(st.users, st.sessions)

	go purgeSessions(st.sessions, time.Hour)

	h := adapthttp.New(recipeSvc, weekplanSvc, authSvc, oidcConfig, cfg.WebDir).Handler()
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func openStores(connStr string) (*stores, error) {
	if connStr == "" {
		log.Printf("DATABASE_URL not set, using in-memory store")
		db := memory.New()
		return &stores{
			recipes:   db,
			favorites: db,
			weekplans: db,
			users:     db,
			sessions:  db.NewSessionRepo(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		return nil, err
	}
	return &stores{
		recipes:   db,
		favorites: db,
		weekplans: db,
		users:     db,
		sessions:  postgres.NewSessionRepo(db),
		close:     db.Close,
	}, nil
}

func setupOIDC(ctx context.Context, c config.OIDC) (adapthttp.OIDCConfig, error) {
	if !c.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, c.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}
	log.Printf("sso enabled via %s", c.Issuer)
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func purgeSessions(sessions domain.SessionRepository, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		if err := sessions.DeleteExpired(context.Background()); err != nil {
			log.Printf("purge sessions: %v", err)
		}
	}
}
