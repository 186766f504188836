// Command seed provisions a fresh deployment: it persists the default
// vocabulary catalog and creates the first admin account.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/botucare/clinic-backend/cmd/mainconfig"
	"github.com/botucare/clinic-backend/internal/catalog"
	"github.com/botucare/clinic-backend/internal/clinical"
	appconfig "github.com/botucare/clinic-backend/internal/config"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/pkg/logging"
)

func main() {
	email := flag.String("admin-email", "", "email for the initial admin account")
	name := flag.String("admin-name", "Administrator", "display name for the initial admin account")
	password := flag.String("admin-password", "", "password for the initial admin account")
	flag.Parse()

	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	gw := gateway.NewDynamoGateway(dynamodb.NewFromConfig(awsCfg), cfg.TablePrefix, logger)

	// NewStore seeds the default catalog when the configuration collection
	// is empty and is a no-op otherwise.
	store, err := catalog.NewStore(ctx, gw, logger)
	if err != nil {
		logger.Error("failed to seed catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog ready", "version", store.Current().Version)

	if *email == "" || *password == "" {
		logger.Info("no admin credentials given, skipping admin account")
		return
	}

	var users []clinical.User
	if err := gw.Query(ctx, gateway.CollectionUsers, gateway.Filter{}, &users); err != nil {
		logger.Error("failed to list users", "error", err)
		os.Exit(1)
	}
	for _, u := range users {
		if u.Email == *email {
			logger.Info("admin account already exists", "user_id", u.ID)
			return
		}
	}

	hash, err := identity.HashPassword(*password)
	if err != nil {
		logger.Error("invalid admin password", "error", err)
		os.Exit(1)
	}
	id, err := gw.Create(ctx, gateway.CollectionUsers, clinical.User{
		Email:        *email,
		Name:         *name,
		Role:         clinical.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		logger.Error("failed to create admin account", "error", err)
		os.Exit(1)
	}
	logger.Info("admin account created", "user_id", id)
}
