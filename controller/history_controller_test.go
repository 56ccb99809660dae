package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dandanshan/meal-selection-app/database"
	"github.com/dandanshan/meal-selection-app/model"
)

func setupTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db
	sel = nil // drop any selector cached against a previous test DB

	router := gin.New()
	router.GET("/api/restaurants", GetRestaurants)
	router.POST("/api/restaurants", CreateRestaurant)
	router.PUT("/api/restaurants/:id", UpdateRestaurant)
	router.DELETE("/api/restaurants/:id", DeleteRestaurant)
	router.POST("/api/select", SelectRestaurant)
	router.GET("/api/history", GetHistory)
	router.POST("/api/history", CreateHistory)
	router.DELETE("/api/history", ClearHistory)
	router.PUT("/api/history/:id/confirm", ConfirmHistory)
	router.DELETE("/api/history/:id", DeleteHistory)
	router.POST("/api/payment", CreatePayment)
	router.PUT("/api/payment", UpsertPayment)
	return db, router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedRestaurant(t *testing.T, db *gorm.DB) model.Restaurant {
	t.Helper()
	r := model.Restaurant{
		Name:            "清粥小菜",
		Type:            "台式",
		SuggestedPeople: model.PartySize{Spec: "1-4"},
		BusinessDays: model.BusinessDays{
			"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		},
		Distance: 0.5,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return r
}

func seedHistory(t *testing.T, db *gorm.DB, restaurantID string) model.History {
	t.Helper()
	entry := model.History{
		Date:         time.Now(),
		RestaurantID: restaurantID,
		PeopleCount:  2,
		Weather:      "晴",
		Confirmed:    true,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed history: %v", err)
	}
	return entry
}

func TestCreateHistoryConfirmsExactlyOneEntry(t *testing.T) {
	db, router := setupTest(t)
	r := seedRestaurant(t, db)

	body := `{"restaurantId":"` + r.ID + `","peopleCount":3,"weather":"晴","isRaining":false,"date":"2024-05-15T12:00:00Z"}`
	w := perform(router, http.MethodPost, "/api/history", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var entries []model.History
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history rows = %d, want 1", len(entries))
	}
	if !entries[0].Confirmed {
		t.Error("entry is not confirmed")
	}
	if entries[0].PeopleCount != 3 {
		t.Errorf("peopleCount = %d, want 3", entries[0].PeopleCount)
	}

	// The catalog must be untouched by confirmation.
	var after model.Restaurant
	if err := db.First(&after, "id = ?", r.ID).Error; err != nil {
		t.Fatalf("reload restaurant: %v", err)
	}
	if after.Name != r.Name || after.Distance != r.Distance {
		t.Error("confirmation mutated the restaurant catalog")
	}
}

func TestCreateHistoryUnknownRestaurant(t *testing.T) {
	_, router := setupTest(t)

	body := `{"restaurantId":"missing","peopleCount":2,"isRaining":false,"date":"2024-05-15T12:00:00Z"}`
	w := perform(router, http.MethodPost, "/api/history", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteHistoryCascadesPayment(t *testing.T) {
	db, router := setupTest(t)
	r := seedRestaurant(t, db)
	entry := seedHistory(t, db, r.ID)
	payment := model.Payment{HistoryID: entry.ID, PayerName: "小明", Amount: 450}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	w := perform(router, http.MethodDelete, "/api/history/"+entry.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var historyCount, paymentCount int64
	db.Model(&model.History{}).Count(&historyCount)
	db.Model(&model.Payment{}).Count(&paymentCount)
	if historyCount != 0 || paymentCount != 0 {
		t.Errorf("after delete: history=%d payments=%d, want 0/0", historyCount, paymentCount)
	}
}

func TestClearHistoryRemovesPaymentsFirst(t *testing.T) {
	db, router := setupTest(t)
	r := seedRestaurant(t, db)
	for i := 0; i < 3; i++ {
		entry := seedHistory(t, db, r.ID)
		payment := model.Payment{HistoryID: entry.ID, PayerName: "小美", Amount: 120}
		if err := db.Create(&payment).Error; err != nil {
			t.Fatalf("seed payment %d: %v", i, err)
		}
	}

	w := perform(router, http.MethodDelete, "/api/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var historyCount, paymentCount int64
	db.Model(&model.History{}).Count(&historyCount)
	db.Model(&model.Payment{}).Count(&paymentCount)
	if historyCount != 0 || paymentCount != 0 {
		t.Errorf("after clear: history=%d payments=%d, want 0/0", historyCount, paymentCount)
	}
}

func TestUpsertPaymentReplacesExisting(t *testing.T) {
	db, router := setupTest(t)
	r := seedRestaurant(t, db)
	entry := seedHistory(t, db, r.ID)

	create := `{"historyId":"` + entry.ID + `","payerName":"小明","amount":450}`
	if w := perform(router, http.MethodPost, "/api/payment", create); w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	// A second create must be rejected; the entry already has a payment.
	if w := perform(router, http.MethodPost, "/api/payment", create); w.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409", w.Code)
	}

	update := `{"historyId":"` + entry.ID + `","payerName":"小華","amount":600}`
	if w := perform(router, http.MethodPut, "/api/payment", update); w.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, body = %s", w.Code, w.Body.String())
	}

	var payments []model.Payment
	if err := db.Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payment rows = %d, want 1", len(payments))
	}
	if payments[0].PayerName != "小華" || payments[0].Amount != 600 {
		t.Errorf("payment = %+v, want replaced values", payments[0])
	}
}

func TestSelectEndpointValidation(t *testing.T) {
	_, router := setupTest(t)

	// isRaining missing entirely.
	w := perform(router, http.MethodPost, "/api/select", `{"peopleCount":2}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = perform(router, http.MethodPost, "/api/select", `{"peopleCount":0,"isRaining":false}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero headcount status = %d, want 400", w.Code)
	}
}

func TestSelectEndpointNoMatch(t *testing.T) {
	_, router := setupTest(t)

	w := perform(router, http.MethodPost, "/api/select", `{"peopleCount":2,"isRaining":false,"temperature":25}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 on empty catalog", w.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("response = %+v, want an actionable no-match message", resp)
	}
}

func TestRestaurantCRUDRoundTrip(t *testing.T) {
	db, router := setupTest(t)

	create := `{
		"name": "牛肉麵",
		"type": "麵食",
		"suggestedPeople": "1-4",
		"businessDays": ["monday","tuesday","wednesday"],
		"notSuitableForRainy": true,
		"distance": 0.7
	}`
	w := perform(router, http.MethodPost, "/api/restaurants", create)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		Data model.Restaurant `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Data.ID == "" {
		t.Fatal("created restaurant has no id")
	}

	update := `{
		"name": "牛肉麵",
		"type": "麵食",
		"suggestedPeople": "5-8",
		"businessDays": ["monday"],
		"distance": 0.7
	}`
	w = perform(router, http.MethodPut, "/api/restaurants/"+created.Data.ID, update)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	var stored model.Restaurant
	if err := db.First(&stored, "id = ?", created.Data.ID).Error; err != nil {
		t.Fatalf("reload restaurant: %v", err)
	}
	if stored.SuggestedPeople.Spec != "5-8" {
		t.Errorf("band after update = %q, want 5-8", stored.SuggestedPeople.Spec)
	}
	if len(stored.BusinessDays) != 1 || stored.BusinessDays[0] != "monday" {
		t.Errorf("business days after update = %v, want [monday]", stored.BusinessDays)
	}
	if stored.NotSuitableForRainy {
		t.Error("rain flag not cleared by update")
	}

	w = perform(router, http.MethodDelete, "/api/restaurants/"+created.Data.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = perform(router, http.MethodDelete, "/api/restaurants/"+created.Data.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestDeleteRestaurantLeavesHistoryIntact(t *testing.T) {
	db, router := setupTest(t)
	r := seedRestaurant(t, db)
	entry := seedHistory(t, db, r.ID)

	if w := perform(router, http.MethodDelete, "/api/restaurants/"+r.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	var kept model.History
	if err := db.First(&kept, "id = ?", entry.ID).Error; err != nil {
		t.Fatalf("history entry lost after catalog delete: %v", err)
	}
	if kept.RestaurantID != r.ID {
		t.Errorf("restaurantId = %q, want the dangling %q", kept.RestaurantID, r.ID)
	}
	if kept.PeopleCount != entry.PeopleCount {
		t.Error("history fields corrupted by catalog delete")
	}
}
