package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/harukim/task-tracker-api/internal/authz"
	"github.com/harukim/task-tracker-api/internal/config"
	"github.com/harukim/task-tracker-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedRolesAndPermissions creates the permission catalog and the admin/user
// roles. Idempotent: reruns reconcile the role grants without duplicating rows.
func SeedRolesAndPermissions(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]models.Permission, len(authz.AllPermissions))
		for _, name := range authz.AllPermissions {
			var perm models.Permission
			if err := tx.Where(models.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", name, err)
			}
			perms[name] = perm
		}

		if err := seedRole(tx, models.RoleAdmin, authz.AllPermissions, perms); err != nil {
			return err
		}
		return seedRole(tx, models.RoleUser, authz.UserPermissions, perms)
	})
}

func seedRole(tx *gorm.DB, name string, grants []string, perms map[string]models.Permission) error {
	var role models.Role
	if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return fmt.Errorf("failed to seed role %s: %w", name, err)
	}

	granted := make([]models.Permission, 0, len(grants))
	for _, g := range grants {
		granted = append(granted, perms[g])
	}
	if err := tx.Model(&role).Association("Permissions").Replace(granted); err != nil {
		return fmt.Errorf("failed to grant permissions to role %s: %w", name, err)
	}
	return nil
}

// SeedAdminUser bootstraps an administrator account from config. Skipped when
// no admin credentials are configured or the account already exists.
func SeedAdminUser(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var adminRole models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
		return fmt.Errorf("failed to load admin role: %w", err)
	}

	admin := models.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Roles:        []models.Role{adminRole},
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Seeded admin user %s", cfg.AdminEmail)
	return nil
}
