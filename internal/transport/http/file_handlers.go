package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/service/files"
)

// FileHandlers provides HTTP handlers for the file exchange endpoints.
type FileHandlers struct {
	files          *files.Service
	maxUploadBytes int64
	log            *zerolog.Logger
}

// NewFileHandlers creates a new file handlers instance.
func NewFileHandlers(filesSvc *files.Service, maxUploadBytes int64, logger *zerolog.Logger) *FileHandlers {
	return &FileHandlers{
		files:          filesSvc,
		maxUploadBytes: maxUploadBytes,
		log:            logger,
	}
}

// FileResponse represents one file descriptor in API responses.
type FileResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UploadDateTime string `json:"uploadDateTime"`
}

// ImageUploadRequest is the base64 convenience upload body.
type ImageUploadRequest struct {
	Image    string `json:"image" form:"image"`
	FileName string `json:"fileName" form:"fileName"`
}

// RegisterMember records the caller as a group member.
// POST /groups/:groupId/user
func (h *FileHandlers) RegisterMember(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	groupID := c.Param("groupId")

	if err := h.files.RegisterMember(c.Request.Context(), groupID, userID); err != nil {
		h.log.Error().Err(err).Str("group_id", groupID).Str("user_id", userID).Msg("failed to register member")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("group_id", groupID).Str("user_id", userID).Msg("member registered")
	c.Status(http.StatusNoContent)
}

// ListFiles returns the group's file metadata, newest first.
// GET /groups/:groupId/files
func (h *FileHandlers) ListFiles(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	groupID := c.Param("groupId")

	metas, err := h.files.List(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, files.ErrNotMember) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this group"})
			return
		}
		h.log.Error().Err(err).Str("group_id", groupID).Msg("failed to list files")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]FileResponse, 0, len(metas))
	for _, meta := range metas {
		response = append(response, FileResponse{
			ID:             meta.ID,
			Name:           meta.Name,
			UploadDateTime: meta.UploadDateTime.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// DownloadFile streams a file's content as an attachment.
// GET /groups/:groupId/files/:fileId
func (h *FileHandlers) DownloadFile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	groupID := c.Param("groupId")
	fileID := c.Param("fileId")

	dl, err := h.files.Get(c.Request.Context(), groupID, userID, fileID)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrNotMember):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this group"})
		case errors.Is(err, files.ErrFileNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "file not found"})
		default:
			h.log.Error().Err(err).Str("group_id", groupID).Str("file_id", fileID).Msg("failed to download file")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", dl.Meta.Name))
	c.Data(http.StatusOK, "application/octet-stream", dl.Content)
}

// UploadFile accepts either a multipart "file" field or a base64 image
// plus file name.
// POST /groups/:groupId/files
func (h *FileHandlers) UploadFile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	groupID := c.Param("groupId")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.uploadMultipart(c, groupID, userID)
		return
	}
	h.uploadImage(c, groupID, userID)
}

func (h *FileHandlers) uploadMultipart(c *gin.Context, groupID, userID string) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart field 'file' is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	meta, err := h.files.Upload(c.Request.Context(), groupID, userID, header.Filename, content)
	if err != nil {
		h.writeUploadError(c, groupID, err)
		return
	}

	h.log.Info().Str("group_id", groupID).Str("file_id", meta.ID).Str("name", meta.Name).Msg("file uploaded")
	c.Status(http.StatusNoContent)
}

func (h *FileHandlers) uploadImage(c *gin.Context, groupID, userID string) {
	var req ImageUploadRequest
	if err := c.ShouldBind(&req); err != nil || req.Image == "" || req.FileName == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "either a 'file' part or 'image' with 'fileName' is required"})
		return
	}

	meta, err := h.files.UploadImage(c.Request.Context(), groupID, userID, req.FileName, req.Image)
	if err != nil {
		h.writeUploadError(c, groupID, err)
		return
	}

	h.log.Info().Str("group_id", groupID).Str("file_id", meta.ID).Str("name", meta.Name).Msg("image uploaded")
	c.Status(http.StatusNoContent)
}

func (h *FileHandlers) writeUploadError(c *gin.Context, groupID string, err error) {
	switch {
	case errors.Is(err, files.ErrNotMember):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this group"})
	case errors.Is(err, files.ErrEmptyUpload):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "upload has no content"})
	case errors.Is(err, files.ErrBadImage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image payload is not valid base64"})
	default:
		h.log.Error().Err(err).Str("group_id", groupID).Msg("failed to upload file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
