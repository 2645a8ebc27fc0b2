package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/bistro-orders-api/utils"
)

// UploadController serves product images stored on local disk
type UploadController struct {
	dir string
}

// NewUploadController serves files from dir
func NewUploadController(dir string) *UploadController {
	return &UploadController{dir: dir}
}

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves uploaded images
func (uc *UploadController) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required", nil)
		return
	}

	filePath, err := utils.SafeUploadPath(uc.dir, filename)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename", nil)
		return
	}

	contentType := utils.ImageContentType(filename)
	if contentType == "application/octet-stream" {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only .png, .jpg, .jpeg and .webp images are served", nil)
		return
	}

	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		respondFailure(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found", nil)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
