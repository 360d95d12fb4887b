package handlers

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
)

// Only stored pictures and the two placeholders are served.
var fileNameRe = regexp.MustCompile(`^(default|not_found|[0-9]+)\.(jpeg|jpg|png|gif)$`)

// FileHandler 上传文件（头像）访问 Handler
type FileHandler struct {
	dir string
}

func NewFileHandler(dir string) *FileHandler {
	return &FileHandler{dir: dir}
}

// Serve 返回头像文件 (GET /files/:filename)
func (h *FileHandler) Serve(c *gin.Context) {
	name := c.Param("filename")
	if !fileNameRe.MatchString(name) {
		RenderNotFound(c)
		return
	}

	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		RenderNotFound(c)
		return
	}

	// 文件名由自增 id 决定，内容不会变
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(path)
}
