package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/forms"
	"github.com/pageza/ticketdesk/backend/internal/models"
)

// CategoryService backs the admin panel. Every operation requires the
// category manage permission.
type CategoryService struct {
	db    *gorm.DB
	authz *Authorizer
	log   *slog.Logger
}

func NewCategoryService(db *gorm.DB, authz *Authorizer, log *slog.Logger) *CategoryService {
	return &CategoryService{db: db, authz: authz, log: log}
}

// CategoryNameExists satisfies forms.CategoryNameChecker.
func (s *CategoryService) CategoryNameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	return models.CategoryNameExists(ctx, s.db, name, excludeID)
}

func (s *CategoryService) List(ctx context.Context, actor *models.User) ([]models.Category, error) {
	if err := s.authz.Require(actor, ObjCategory, ActManage); err != nil {
		return nil, err
	}
	return models.ListCategories(ctx, s.db)
}

func (s *CategoryService) Add(ctx context.Context, actor *models.User, in forms.ValidatedCategory) (*models.Category, error) {
	if err := s.authz.Require(actor, ObjCategory, ActManage); err != nil {
		return nil, err
	}

	category := &models.Category{Name: in.Name, Description: in.Description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := models.CategoryNameExists(ctx, tx, in.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}
		if err := models.CreateCategory(ctx, tx, category); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category added", "category_id", category.ID, "name", category.Name, "user_id", actor.ID)
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, actor *models.User, id uint, in forms.ValidatedCategory) (*models.Category, error) {
	if err := s.authz.Require(actor, ObjCategory, ActManage); err != nil {
		return nil, err
	}

	var category *models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = models.GetCategory(ctx, tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return err
		}
		taken, err := models.CategoryNameExists(ctx, tx, in.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}
		if err := models.RenameCategory(ctx, tx, id, in.Name); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}
		category.Name = in.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category renamed", "category_id", id, "name", in.Name, "user_id", actor.ID)
	return category, nil
}

// Delete removes a category that no ticket references.
func (s *CategoryService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := s.authz.Require(actor, ObjCategory, ActManage); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := models.GetCategory(ctx, tx, id); err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return err
		}
		inUse, err := models.CountTicketsInCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return ErrCategoryInUse
		}
		if err := models.DeleteCategory(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrCategoryInUse
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("category deleted", "category_id", id, "user_id", actor.ID)
	return nil
}
