package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/models"
	"github.com/torquehub/torquehub-api/services"
)

// CreateJobRequest represents the request body for scheduling a job
type CreateJobRequest struct {
	CustomerID uint   `json:"customer_id" binding:"required"`
	JobDate    string `json:"job_date" binding:"required"` // ISO-8601 calendar date
}

// AddJobItemRequest represents the request body for adding a line item
type AddJobItemRequest struct {
	ItemType string `json:"item_type" binding:"required"` // "service" or "part"
	ItemID   uint   `json:"item_id" binding:"required"`
	Qty      int    `json:"qty" binding:"required"`
}

// jobIDParam parses the :id URL parameter
func jobIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Job ID must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// CreateJob handles POST /api/v1/jobs - schedules a repair job (admins only)
func CreateJob(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	jobDate, err := models.ParseDate(req.JobDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "job_date must be an ISO-8601 date (YYYY-MM-DD)")
		return
	}

	db := config.GetDB()

	// The customer must exist in the caller's tenant
	var customer models.Customer
	if err := db.Where("tenant_id = ?", tenantID).First(&customer, req.CustomerID).Error; err != nil {
		respondError(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
		return
	}

	job := models.Job{
		JobDate:       jobDate,
		CustomerID:    customer.ID,
		Status:        models.JobStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		TenantID:      tenantID,
	}

	if err := db.Create(&job).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create job")
		return
	}

	// Load the customer relationship to return complete data
	if err := db.Preload("Customer").First(&job, job.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load job details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    job,
	})
}

// ListJobs handles GET /api/v1/jobs - lists the tenant's jobs, newest first.
// List views read the persisted total_cost; it is recomputed on every
// line-item mutation, so no per-row summation happens here.
func ListJobs(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var jobs []models.Job
	if err := db.Preload("Customer").Where("tenant_id = ?", tenantID).Order("job_date DESC, id DESC").Find(&jobs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    jobs,
	})
}

// GetJob handles GET /api/v1/jobs/:id - fetches one job with its line items
func GetJob(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	job, err := services.GetBillingService().GetJob(tenantID, jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Attach a presigned photo URL when a photo has been uploaded
	if job.PhotoS3Key != nil {
		if url, err := services.GetPhotoService().GetPhotoURL(*job.PhotoS3Key); err == nil && url != "" {
			job.PhotoURL = &url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// AddJobItem handles POST /api/v1/jobs/:id/items - adds a service or part
// line item to an open job and recomputes its total
func AddJobItem(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	var req AddJobItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	job, err := services.GetBillingService().AddLineItem(tenantID, jobID, req.ItemType, req.ItemID, req.Qty)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// CompleteJob handles POST /api/v1/jobs/:id/complete - latches the job to
// completed; no further line items can be added afterwards
func CompleteJob(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	job, err := services.GetBillingService().MarkCompleted(tenantID, jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// PayJob handles POST /api/v1/jobs/:id/pay - latches the job to paid (admins only)
func PayJob(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	job, err := services.GetBillingService().MarkPaid(tenantID, jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// ListOverdueJobs handles GET /api/v1/jobs/overdue - lists unpaid jobs past
// the grace period, oldest first (admins only)
func ListOverdueJobs(c *gin.Context) {
	user, tenantID, ok := currentUser(c)
	if !ok {
		return
	}
	if !requireAdmin(c, user) {
		return
	}

	billing := services.GetBillingService()
	today := models.Today()

	jobs, err := billing.ListOverdue(tenantID, today)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type overdueJob struct {
		models.Job
		DaysOverdue int `json:"days_overdue"`
	}

	data := make([]overdueJob, 0, len(jobs))
	for i := range jobs {
		data = append(data, overdueJob{
			Job:         jobs[i],
			DaysOverdue: billing.DaysOverdue(&jobs[i], today),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
