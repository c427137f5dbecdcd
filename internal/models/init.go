package models

import (
	"strings"

	"github.com/dujiao-next/delivery/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const defaultAdminPassword = "admin123"

// InitDefaultAdmin 初始化默认管理员账号（users 表中不存在 ADMIN 时创建）
func InitDefaultAdmin(phone, password string) error {
	var count int64
	if err := DB.Model(&User{}).Where("user_type = ?", "ADMIN").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = "10000000000"
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Name:         "Administrator",
		Phone:        phone,
		PasswordHash: string(hash),
		UserType:     "ADMIN",
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "phone", phone)
	} else {
		logger.Warnw("default_admin_created", "phone", phone, "password_hidden", true)
	}
	return nil
}
