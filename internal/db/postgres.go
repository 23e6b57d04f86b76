package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/types"
	"github.com/yungbote/wishlink-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "wishlink", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Wishlist{},
		&types.WishlistCollaborator{},
		&types.Product{},
		&types.ProductComment{},
		&types.ProductReaction{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		sql  string
	}{
		{"fk_user_token_user_id", `ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_wishlist_owner_id", `ALTER TABLE "wishlist" ADD CONSTRAINT "fk_wishlist_owner_id" FOREIGN KEY ("owner_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_wishlist_collaborator_wishlist_id", `ALTER TABLE "wishlist_collaborator" ADD CONSTRAINT "fk_wishlist_collaborator_wishlist_id" FOREIGN KEY ("wishlist_id") REFERENCES "wishlist"("id") ON DELETE CASCADE`},
		{"fk_product_wishlist_id", `ALTER TABLE "product" ADD CONSTRAINT "fk_product_wishlist_id" FOREIGN KEY ("wishlist_id") REFERENCES "wishlist"("id") ON DELETE CASCADE`},
		{"fk_product_comment_product_id", `ALTER TABLE "product_comment" ADD CONSTRAINT "fk_product_comment_product_id" FOREIGN KEY ("product_id") REFERENCES "product"("id") ON DELETE CASCADE`},
		{"fk_product_reaction_product_id", `ALTER TABLE "product_reaction" ADD CONSTRAINT "fk_product_reaction_product_id" FOREIGN KEY ("product_id") REFERENCES "product"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		sql := fmt.Sprintf(`
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					%s;
				END IF;
			END $$;`, c.name, c.sql)
		if err := s.db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
