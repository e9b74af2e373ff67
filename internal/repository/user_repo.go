package repository

import (
	"context"
	"fmt"

	"procurement-backend/internal/models"

	"gorm.io/gorm/clause"
)

type userRepo struct{ s *GormStore }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return mapErr(r.s.q(ctx).Create(u).Error)
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.s.q(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.s.q(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *userRepo) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var n int64
	err := r.s.q(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

func (r *userRepo) LockForRoleChange(ctx context.Context) error {
	if !r.s.forUpdate {
		return nil
	}
	table := models.User{}.TableName()
	switch r.s.db.Dialector.Name() {
	case "postgres":
		return r.s.q(ctx).Exec(fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", table)).Error
	case "mysql":
		var ids []uint
		return r.s.q(ctx).Model(&models.User{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("role = ?", models.RoleAdmin).
			Pluck("id", &ids).Error
	}
	return nil
}
