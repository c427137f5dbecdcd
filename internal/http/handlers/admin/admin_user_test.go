package admin

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dujiao-next/delivery/internal/constants"
	handlershared "github.com/dujiao-next/delivery/internal/http/handlers/shared"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/provider"
	"github.com/dujiao-next/delivery/internal/repository"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestAdminUpdateUserStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:admin_user_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	admin := models.User{Name: "Root", Phone: "1", UserType: constants.UserTypeAdmin, PasswordHash: "x", IsActive: true}
	driver := models.User{Name: "Dan", Phone: "2", UserType: constants.UserTypeDriver, PasswordHash: "x", IsActive: true}
	for _, user := range []*models.User{&admin, &driver} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	h := New(&provider.Container{UserAdminService: service.NewUserAdminService(repository.NewUserRepository(db))})
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(handlershared.ContextKeyUserID, admin.ID)
		c.Set(handlershared.ContextKeyUserRole, constants.UserTypeAdmin)
		c.Next()
	})
	engine.PUT("/users/:id/status", h.UpdateUserStatus)

	resp := callAdmin(t, engine, http.MethodPut, fmt.Sprintf("/users/%d/status", driver.ID), map[string]interface{}{"is_active": false})
	if resp.StatusCode != 0 {
		t.Fatalf("deactivate failed: %+v", resp)
	}
	var stored models.User
	if err := db.First(&stored, driver.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("driver should be inactive")
	}

	if resp := callAdmin(t, engine, http.MethodPut, fmt.Sprintf("/users/%d/status", driver.ID), map[string]interface{}{}); resp.StatusCode != 400 {
		t.Fatalf("missing is_active want 400 got %d", resp.StatusCode)
	}
	if resp := callAdmin(t, engine, http.MethodPut, fmt.Sprintf("/users/%d/status", admin.ID), map[string]interface{}{"is_active": false}); resp.StatusCode != 400 {
		t.Fatalf("self deactivation want 400 got %d", resp.StatusCode)
	}
	if resp := callAdmin(t, engine, http.MethodPut, "/users/999/status", map[string]interface{}{"is_active": true}); resp.StatusCode != 404 {
		t.Fatalf("unknown user want 404 got %d", resp.StatusCode)
	}
}
