// Command issue-token mints a bearer token for an existing user so operators can call the
// write endpoints without an external identity provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nandakumartc/sonarqube/internal/models"
	"github.com/Nandakumartc/sonarqube/internal/repository"
	"github.com/Nandakumartc/sonarqube/internal/service"
	"github.com/Nandakumartc/sonarqube/pkg/config"
	"github.com/Nandakumartc/sonarqube/pkg/database"
	"github.com/Nandakumartc/sonarqube/pkg/logger"
)

func main() {
	var (
		login  string
		role   string
		locale string
	)
	flag.StringVar(&login, "login", "", "login of the user the token is issued for")
	flag.StringVar(&role, "role", string(models.RoleUser), "USER or ADMIN")
	flag.StringVar(&locale, "locale", "", "preferred locale carried in the token")
	flag.Parse()

	if strings.TrimSpace(login) == "" {
		flag.Usage()
		os.Exit(2)
	}
	userRole := models.UserRole(strings.ToUpper(role))
	if userRole != models.RoleUser && userRole != models.RoleAdmin {
		log.Fatalf("unknown role %q", role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	users, err := repository.NewUserRepository(db).FindByLogins(ctx, []string{login})
	if err != nil {
		logr.Fatal("failed to look up user", zap.String("login", login), zap.Error(err))
	}
	user, ok := users[login]
	if !ok || !user.Active {
		logr.Fatal("no active user with this login", zap.String("login", login))
	}
	if locale == "" {
		locale = cfg.I18n.DefaultLocale
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Expiry: cfg.JWT.Expiration})
	token, expiresAt, err := tokens.GenerateToken(user, userRole, locale)
	if err != nil {
		logr.Fatal("failed to issue token", zap.Error(err))
	}
	logr.Info("token issued", zap.String("login", login), zap.String("role", string(userRole)), zap.Time("expires_at", expiresAt))
	fmt.Println(token)
}
