package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SANATANIxAPI/pic/enhance"
	"github.com/SANATANIxAPI/pic/tool"
	"github.com/SANATANIxAPI/pic/types"
)

type EnhanceController struct {
	pipeline *enhance.Pipeline
}

func NewEnhanceController(pipeline *enhance.Pipeline) *EnhanceController {
	return &EnhanceController{
		pipeline: pipeline,
	}
}

// HandleEnhance accepts a multipart image upload and streams back the
// enhanced bytes. Query parameters: quality (default high; unknown values
// pass the image through), output_format (default jpg).
func (ctrl *EnhanceController) HandleEnhance(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		tool.DefaultLogger.Errorf("[Enhance] Missing file in request: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing image file in multipart field 'file'"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		tool.DefaultLogger.Errorf("[Enhance] Failed to open upload: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		tool.DefaultLogger.Errorf("[Enhance] Failed to read upload: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read uploaded file"))
		return
	}

	quality := c.DefaultQuery("quality", "high")
	format := c.DefaultQuery("output_format", "jpg")
	tier := types.ParseTier(quality)

	tool.DefaultLogger.Infof("[Enhance] %s (%d bytes) tier=%s format=%s", fileHeader.Filename, len(data), tier, format)

	out, err := ctrl.pipeline.Process(data, tier, format)
	if err != nil {
		tool.DefaultLogger.Errorf("[Enhance] Processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}

	c.Data(http.StatusOK, enhance.ContentType(format), out)
}
