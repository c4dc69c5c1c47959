// internal/handlers/upload.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

var uploadFolders = map[string]bool{
	"services": true,
	"badges":   true,
	"avatars":  true,
}

// POST /uploads/images
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file upload", nil)
		return
	}

	folder := c.DefaultPostForm("folder", "services")
	if !uploadFolders[folder] {
		utils.BadRequestResponse(c, "Unknown upload folder", nil)
		return
	}

	result, err := h.storageService.Upload(fileHeader, services.UploadOptions{
		Folder: folder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "File uploaded", result)
}
