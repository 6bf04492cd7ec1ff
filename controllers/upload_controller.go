package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/torquehub/torquehub-api/config"
	"github.com/torquehub/torquehub-api/models"
	"github.com/torquehub/torquehub-api/services"
	"github.com/torquehub/torquehub-api/utils"
)

// UploadJobPhoto handles POST /api/v1/jobs/:id/photo - attaches a vehicle
// condition photo (PNG) to a job. A new upload replaces the previous photo.
func UploadJobPhoto(c *gin.Context) {
	_, tenantID, ok := currentUser(c)
	if !ok {
		return
	}

	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var job models.Job
	if err := db.Where("tenant_id = ?", tenantID).First(&job, jobID).Error; err != nil {
		respondError(c, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A photo file is required (multipart field \"photo\")")
		return
	}

	photoService := services.GetPhotoService()
	photoKey, err := photoService.UploadPhoto(fileHeader, job.ID)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		log.Error().Err(err).Uint("job_id", job.ID).Msg("Photo upload failed")
		respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to upload photo")
		return
	}

	// Replace the previous photo, if any
	oldKey := job.PhotoS3Key
	if err := db.Model(&job).Update("photo_s3_key", photoKey).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save photo reference")
		return
	}
	if oldKey != nil && *oldKey != photoKey {
		if err := photoService.DeletePhoto(*oldKey); err != nil {
			log.Warn().Err(err).Str("photo_key", *oldKey).Msg("Failed to delete replaced photo")
		}
	}

	job.PhotoS3Key = &photoKey
	if url, err := photoService.GetPhotoURL(photoKey); err == nil && url != "" {
		job.PhotoURL = &url
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}
