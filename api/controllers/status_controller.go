package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SANATANIxAPI/pic/tool"
	"github.com/SANATANIxAPI/pic/types"
)

// HandleHealth reports liveness. No side effects.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// HandleTiers lists the selectable quality tiers.
func HandleTiers(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(types.Tiers()))
}
