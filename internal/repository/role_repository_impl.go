package repository

import (
	"errors"
	"strings"

	"service-marketplace/internal/domain/entity"
	domainRepo "service-marketplace/internal/domain/repository"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
)

const roleCacheSize = 8

// roleRepository caches rows by name; roles are seeded by migration and never change at runtime.
type roleRepository struct {
	cache *lru.Cache[string, entity.Role]
}

func NewRoleRepository() domainRepo.RoleRepository {
	cache, _ := lru.New[string, entity.Role](roleCacheSize)
	return &roleRepository{cache: cache}
}

// FindByName matches role_name case-insensitively. A missing role yields (nil, nil).
func (r *roleRepository) FindByName(db *gorm.DB, name string) (*entity.Role, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if role, ok := r.cache.Get(key); ok {
		return &role, nil
	}

	var role entity.Role
	if err := db.Where("role_name = ?", key).Take(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	r.cache.Add(key, role)
	return &role, nil
}
