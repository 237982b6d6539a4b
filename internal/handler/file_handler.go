package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/pkg/response"
)

type fileResolver interface {
	Resolve(token string) ([]byte, string, error)
}

// FileHandler serves stored receipts and logos behind signed, expiring links.
type FileHandler struct {
	files fileResolver
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(files fileResolver) *FileHandler {
	return &FileHandler{files: files}
}

// Serve godoc
// @Summary Download a stored file
// @Tags Files
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Serve(c *gin.Context) {
	data, mime, err := h.files.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, mime, data)
}
