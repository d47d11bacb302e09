package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/vidsum_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 按邮箱查询（大小写不敏感）
func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByStripeCustomerID(customerID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

// UpdateFields 定向更新指定列。配额路径和订阅路径共享同一行，
// 必须按列更新，禁止整行覆盖。
func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// IncrementUsageIfAllowed 原子的检查并自增：只有 usage_count < usage_limit
// 时才加一，条件和写入在同一条 UPDATE 内完成。返回是否自增成功。
func (r *UserRepository) IncrementUsageIfAllowed(id int64) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND usage_count < usage_limit", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementUsage 退还一次配额（下限为 0）
func (r *UserRepository) DecrementUsage(id int64) error {
	return r.db.Model(&model.User{}).
		Where("id = ? AND usage_count > 0", id).
		Update("usage_count", gorm.Expr("usage_count - 1")).Error
}

// ResetUsage 将计数清零并记录重置日期。条件写入：并发场景下
// 另一请求已先重置（甚至已计数）时，本次不再覆盖。
func (r *UserRepository) ResetUsage(id int64, resetDate time.Time) error {
	return r.db.Model(&model.User{}).
		Where("id = ? AND (last_reset_date IS NULL OR last_reset_date < ?)", id, resetDate).
		Updates(map[string]interface{}{
			"usage_count":     0,
			"last_reset_date": resetDate,
		}).Error
}

// ForceResetUsage 无条件清零，仅供计数损坏兜底使用
func (r *UserRepository) ForceResetUsage(id int64, resetDate time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"usage_count":     0,
		"last_reset_date": resetDate,
	}).Error
}

// ResetAllOutdated 批量清零所有跨天未重置的计数（兜底任务，
// 正常路径是请求内的惰性重置）
func (r *UserRepository) ResetAllOutdated(today time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("last_reset_date IS NULL OR last_reset_date < ?", today).
		Updates(map[string]interface{}{
			"usage_count":     0,
			"last_reset_date": today,
		})
	return result.RowsAffected, result.Error
}

// LinkStripeCustomer 绑定 Stripe 客户 ID
func (r *UserRepository) LinkStripeCustomer(id int64, customerID string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("stripe_customer_id", customerID).Error
}
