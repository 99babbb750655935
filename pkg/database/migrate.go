package database

import (
	"fmt"

	"lumina-be/internal/model"

	"gorm.io/gorm"
)

// Foreign keys are added by hand so they carry ON DELETE CASCADE. The
// services already delete dependents explicitly; these only catch rows
// written outside them.
var postMigrationSQL = []string{
	`DO $$ BEGIN
	   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_notes_user') THEN
	     ALTER TABLE notes ADD CONSTRAINT fk_notes_user
	       FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
	   END IF;
	 END $$;`,
	`DO $$ BEGIN
	   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_auth_tokens_user') THEN
	     ALTER TABLE auth_tokens ADD CONSTRAINT fk_auth_tokens_user
	       FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
	   END IF;
	 END $$;`,
}

// Migrate brings the schema up to date. It is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("create extension: %w", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Note{}, &model.AuthToken{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("post migration: %w", err)
		}
	}
	return nil
}
