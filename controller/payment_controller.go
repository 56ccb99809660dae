package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dandanshan/meal-selection-app/database"
	"github.com/dandanshan/meal-selection-app/model"
)

const uploadDir = "./uploads"

type paymentRequest struct {
	HistoryID    string  `json:"historyId" binding:"required"`
	PayerName    string  `json:"payerName" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	ReceiptImage string  `json:"receiptImage"`
}

// bindPaymentRequest accepts either a JSON body or a multipart form.
// The multipart path may carry a receipt image, stored under
// ./uploads with the generated filename recorded on the payment.
func bindPaymentRequest(c *gin.Context) (*paymentRequest, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req paymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	req := &paymentRequest{
		HistoryID: c.PostForm("historyId"),
		PayerName: c.PostForm("payerName"),
	}
	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount <= 0 {
		return nil, errors.New("invalid or missing amount")
	}
	req.Amount = amount
	if req.HistoryID == "" || req.PayerName == "" {
		return nil, errors.New("historyId and payerName are required")
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		return req, nil
	}
	if file.Size > 5<<20 {
		return nil, errors.New("receipt image exceeds 5MB limit")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	if !allowedExts[ext] {
		return nil, errors.New("invalid receipt file type, only JPG/JPEG/PNG allowed")
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	newFileName := fmt.Sprintf("receipt-%s-%d%s", req.HistoryID, time.Now().UnixNano(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, newFileName)); err != nil {
		return nil, fmt.Errorf("failed to save receipt image: %w", err)
	}
	req.ReceiptImage = newFileName
	return req, nil
}

func findHistoryForPayment(c *gin.Context, historyID string) bool {
	var entry model.History
	if err := database.DB.Where("id = ?", historyID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "History record not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to fetch history record",
			})
		}
		return false
	}
	return true
}

// CreatePayment links a new payment to a history entry. At most one
// payment may exist per entry.
func CreatePayment(c *gin.Context) {
	req, err := bindPaymentRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid payment payload: " + err.Error(),
		})
		return
	}
	if !findHistoryForPayment(c, req.HistoryID) {
		return
	}

	var existing model.Payment
	err = database.DB.Where("history_id = ?", req.HistoryID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Payment already exists for this history record",
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to check existing payment",
		})
		return
	}

	payment := model.Payment{
		HistoryID:    req.HistoryID,
		PayerName:    req.PayerName,
		Amount:       req.Amount,
		ReceiptImage: req.ReceiptImage,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create payment",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payment,
	})
}

// UpsertPayment creates or replaces the payment of a history entry.
func UpsertPayment(c *gin.Context) {
	req, err := bindPaymentRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid payment payload: " + err.Error(),
		})
		return
	}
	if !findHistoryForPayment(c, req.HistoryID) {
		return
	}

	var payment model.Payment
	err = database.DB.Where("history_id = ?", req.HistoryID).First(&payment).Error
	switch {
	case err == nil:
		payment.PayerName = req.PayerName
		payment.Amount = req.Amount
		if req.ReceiptImage != "" {
			payment.ReceiptImage = req.ReceiptImage
		}
		err = database.DB.Save(&payment).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment = model.Payment{
			HistoryID:    req.HistoryID,
			PayerName:    req.PayerName,
			Amount:       req.Amount,
			ReceiptImage: req.ReceiptImage,
		}
		err = database.DB.Create(&payment).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save payment",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payment,
	})
}
