package share

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/service/library"
	"github.com/alanyang/promptshelf/internal/transport/httperr"
)

func Register(rg *gin.RouterGroup, lib *library.Library) {
	rg.GET("/by-me", sharedByMe(lib))
	rg.GET("/with-me", sharedWithMe(lib))
	rg.GET("/:id", getShare(lib))
	rg.DELETE("/:id", unshare(lib))
}

func sharedByMe(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := lib.SharedByMe(c.Request.Context())
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func sharedWithMe(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := lib.SharedWithMe(c.Request.Context())
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getShare(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httperr.BadRequest(c, "invalid id")
			return
		}

		g, err := lib.Grant(c.Request.Context(), id)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, g)
	}
}

// unshare responds with the deactivated grant.
func unshare(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httperr.BadRequest(c, "invalid id")
			return
		}

		g, err := lib.Unshare(c.Request.Context(), id)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, g)
	}
}
