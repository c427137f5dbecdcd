package main

import (
	"fmt"
	"log"
	"time"

	"github.com/dujiao-next/delivery/internal/config"
	"github.com/dujiao-next/delivery/internal/constants"
	"github.com/dujiao-next/delivery/internal/logger"
	"github.com/dujiao-next/delivery/internal/models"
	"github.com/dujiao-next/delivery/internal/service"

	"github.com/shopspring/decimal"
)

const seedPassword = "password123"

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := service.HashPassword(seedPassword)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}

	// 用户
	users := []models.User{
		{Name: "Alice Customer", Phone: "13800000001", Email: "alice@example.com", UserType: constants.UserTypeCustomer},
		{Name: "Bob Customer", Phone: "13800000002", Email: "bob@example.com", UserType: constants.UserTypeCustomer},
		{Name: "Dan Driver", Phone: "13900000001", UserType: constants.UserTypeDriver, VehicleNumber: "DL-1001", CurrentLat: ptrFloat(31.2304), CurrentLng: ptrFloat(121.4737)},
		{Name: "Eve Driver", Phone: "13900000002", UserType: constants.UserTypeDriver, VehicleNumber: "DL-1002"},
		{Name: "Ops Admin", Phone: "13700000001", Email: "ops@example.com", UserType: constants.UserTypeAdmin},
	}
	for i := range users {
		users[i].PasswordHash = hash
		users[i].IsActive = true
		var existing models.User
		if err := models.DB.Where("phone = ?", users[i].Phone).First(&existing).Error; err == nil {
			users[i] = existing
			stdLog.Printf("User exists: %s", existing.Phone)
			continue
		}
		if err := models.DB.Create(&users[i]).Error; err != nil {
			stdLog.Fatalf("Failed to create user %s: %v", users[i].Phone, err)
		}
		stdLog.Printf("Created user: %s (%s)", users[i].Name, users[i].UserType)
	}
	alice := users[0]

	// 收货地址
	addresses := []models.UserAddress{
		{UserID: alice.ID, Label: "Home", AddressLine: "88 Century Avenue, Pudong", Latitude: 31.2397, Longitude: 121.4998, IsDefault: true},
		{UserID: alice.ID, Label: "Office", AddressLine: "1 Nanjing West Road, Jing'an", Latitude: 31.2286, Longitude: 121.4547},
		{UserID: users[1].ID, Label: "Home", AddressLine: "500 Huaihai Road, Huangpu", Latitude: 31.2196, Longitude: 121.4689, IsDefault: true},
	}
	for i := range addresses {
		var existing models.UserAddress
		if err := models.DB.Where("user_id = ? AND label = ?", addresses[i].UserID, addresses[i].Label).First(&existing).Error; err == nil {
			continue
		}
		if err := models.DB.Create(&addresses[i]).Error; err != nil {
			stdLog.Printf("Failed to create address %s: %v", addresses[i].Label, err)
		}
	}

	// 分类
	catalog := []struct {
		Name string
		Subs []string
	}{
		{Name: "Restaurants", Subs: []string{"Noodles", "Burgers"}},
		{Name: "Groceries", Subs: []string{"Fruit", "Dairy"}},
		{Name: "Pharmacy", Subs: []string{"Daily Care"}},
	}
	categories := make(map[string]models.Category)
	subCategories := make(map[string]models.SubCategory)
	for i, item := range catalog {
		category := models.Category{Name: item.Name, SortOrder: (len(catalog) - i) * 10, IsActive: true}
		if err := models.DB.Where("name = ?", item.Name).FirstOrCreate(&category).Error; err != nil {
			stdLog.Fatalf("Failed to create category %s: %v", item.Name, err)
		}
		categories[item.Name] = category
		for _, subName := range item.Subs {
			sub := models.SubCategory{CategoryID: category.ID, Name: subName}
			if err := models.DB.Where("category_id = ? AND name = ?", category.ID, subName).FirstOrCreate(&sub).Error; err != nil {
				stdLog.Fatalf("Failed to create sub category %s: %v", subName, err)
			}
			subCategories[subName] = sub
		}
	}

	// 门店
	stores := []models.Store{
		{
			CategoryID:            categories["Restaurants"].ID,
			SubCategoryID:         ptrUint(subCategories["Noodles"].ID),
			Name:                  "Lanzhou Noodle House",
			Address:               "12 Fuzhou Road, Huangpu",
			Latitude:              ptrFloat(31.2355),
			Longitude:             ptrFloat(121.4820),
			DeliveryFeePerKM:      money(2),
			MinimumOrder:          money(20),
			EstimatedDeliveryTime: 25,
			OpeningTime:           ptrString("09:00"),
			ClosingTime:           ptrString("22:00"),
		},
		{
			CategoryID:            categories["Restaurants"].ID,
			SubCategoryID:         ptrUint(subCategories["Burgers"].ID),
			Name:                  "Bund Burger Bar",
			Address:               "3 Zhongshan East 1st Road",
			Latitude:              ptrFloat(31.2400),
			Longitude:             ptrFloat(121.4900),
			DeliveryFeePerKM:      moneyString("2.50"),
			MinimumOrder:          money(30),
			EstimatedDeliveryTime: 35,
			OpeningTime:           ptrString("11:00"),
			ClosingTime:           ptrString("02:00"),
		},
		{
			CategoryID:            categories["Groceries"].ID,
			Name:                  "Fresh Mart",
			Address:               "66 Xinzha Road, Jing'an",
			Latitude:              ptrFloat(31.2310),
			Longitude:             ptrFloat(121.4600),
			DeliveryFeePerKM:      moneyString("1.50"),
			EstimatedDeliveryTime: 40,
		},
		{
			// 缺少坐标的门店，用于演示路线计算跳过逻辑
			CategoryID:            categories["Pharmacy"].ID,
			Name:                  "Corner Pharmacy",
			Address:               "Unknown lane",
			DeliveryFeePerKM:      money(3),
			EstimatedDeliveryTime: 30,
		},
	}
	for i := range stores {
		stores[i].IsActive = true
		var existing models.Store
		if err := models.DB.Where("name = ?", stores[i].Name).First(&existing).Error; err == nil {
			stores[i] = existing
			continue
		}
		if err := models.DB.Create(&stores[i]).Error; err != nil {
			stdLog.Fatalf("Failed to create store %s: %v", stores[i].Name, err)
		}
		stdLog.Printf("Created store: %s", stores[i].Name)
	}

	// 商品与规格
	products := []models.Product{
		{
			StoreID: stores[0].ID, CategoryID: stores[0].CategoryID, SubCategoryID: stores[0].SubCategoryID,
			Name: "Beef Noodle Soup", Description: "Hand-pulled noodles in clear beef broth", BasePrice: money(28),
			Variants: []models.ProductVariant{
				{VariantType: "Size", VariantValue: "Regular", IsAvailable: true},
				{VariantType: "Size", VariantValue: "Large", PriceAdjustment: money(6), IsAvailable: true},
			},
		},
		{
			StoreID: stores[0].ID, CategoryID: stores[0].CategoryID, SubCategoryID: stores[0].SubCategoryID,
			Name: "Cold Cucumber Salad", BasePrice: money(12),
		},
		{
			StoreID: stores[1].ID, CategoryID: stores[1].CategoryID, SubCategoryID: stores[1].SubCategoryID,
			Name: "Classic Cheeseburger", Description: "Double patty with cheddar", BasePrice: money(45),
			Variants: []models.ProductVariant{
				{VariantType: "Side", VariantValue: "Fries", PriceAdjustment: money(8), IsAvailable: true},
				{VariantType: "Side", VariantValue: "Salad", PriceAdjustment: money(10), IsAvailable: true},
			},
		},
		{
			StoreID: stores[2].ID, CategoryID: stores[2].CategoryID, SubCategoryID: ptrUint(subCategories["Fruit"].ID),
			Name: "Seasonal Fruit Box", BasePrice: moneyString("39.90"),
		},
		{
			StoreID: stores[2].ID, CategoryID: stores[2].CategoryID, SubCategoryID: ptrUint(subCategories["Dairy"].ID),
			Name: "Fresh Milk 1L", BasePrice: moneyString("15.50"),
		},
		{
			StoreID: stores[3].ID, CategoryID: stores[3].CategoryID, SubCategoryID: ptrUint(subCategories["Daily Care"].ID),
			Name: "Face Masks (10 pcs)", BasePrice: money(25),
		},
	}
	for i := range products {
		products[i].IsAvailable = true
		var existing models.Product
		if err := models.DB.Where("store_id = ? AND name = ?", products[i].StoreID, products[i].Name).First(&existing).Error; err == nil {
			continue
		}
		if err := models.DB.Create(&products[i]).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", products[i].Name, err)
			continue
		}
		stdLog.Printf("Created product: %s (%d variants)", products[i].Name, len(products[i].Variants))
	}

	// 优惠券
	now := time.Now()
	endDate := now.AddDate(0, 3, 0)
	maxDiscount := money(30)
	minOrder := money(50)
	totalLimit := 500
	coupons := []models.Coupon{
		{
			Code: "WELCOME10", Title: "10% off your first order", DiscountType: constants.DiscountTypePercentage,
			DiscountValue: money(10), MaxDiscountAmount: &maxDiscount, ApplicableTo: constants.ScopeAll,
			IsFirstOrderOnly: true, MaxUsagePerUser: 1,
		},
		{
			Code: "NOODLE5", Title: "5 off noodles", DiscountType: constants.DiscountTypeFixedAmount,
			DiscountValue: money(5), MinOrderAmount: &minOrder, ApplicableTo: constants.ScopeStore,
			ApplicableID: ptrUint(stores[0].ID), MaxUsagePerUser: 3, TotalUsageLimit: &totalLimit,
		},
		{
			Code: "FREESHIP", Title: "Free delivery on groceries", DiscountType: constants.DiscountTypeFreeDelivery,
			ApplicableTo: constants.ScopeCategory, ApplicableID: ptrUint(categories["Groceries"].ID), MaxUsagePerUser: 5,
		},
	}
	admin := users[len(users)-1]
	for i := range coupons {
		coupons[i].IsActive = true
		coupons[i].StartDate = &now
		coupons[i].EndDate = &endDate
		coupons[i].CreatedBy = &admin.ID
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupons[i].Code).First(&existing).Error; err == nil {
			existing.StartDate = coupons[i].StartDate
			existing.EndDate = coupons[i].EndDate
			existing.IsActive = true
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update coupon %s: %v", existing.Code, err)
			} else {
				stdLog.Printf("Updated coupon: %s", existing.Code)
			}
			continue
		}
		if err := models.DB.Create(&coupons[i]).Error; err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupons[i].Code, err)
		} else {
			stdLog.Printf("Created coupon: %s", coupons[i].Code)
		}
	}

	printSummary(stdLog, len(users), len(addresses), len(stores), len(products), len(coupons))
}

func printSummary(stdLog *log.Logger, users, addresses, stores, products, coupons int) {
	stdLog.Println("Seed finished")
	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Printf("- %d Users (password: %s)\n", users, seedPassword)
	fmt.Printf("- %d Addresses\n", addresses)
	fmt.Printf("- %d Stores (one without coordinates)\n", stores)
	fmt.Printf("- %d Products\n", products)
	fmt.Printf("- %d Coupons\n", coupons)
}

func money(v int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(v))
}

func moneyString(v string) models.Money {
	return models.NewMoneyFromString(v)
}

func ptrFloat(v float64) *float64 { return &v }

func ptrUint(v uint) *uint { return &v }

func ptrString(v string) *string { return &v }
