package item

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/service/library"
	"github.com/alanyang/promptshelf/internal/transport/httperr"
)

func Register(rg *gin.RouterGroup, lib *library.Library) {
	rg.GET("", listItems(lib))
	rg.POST("", createItem(lib))
	rg.PUT("/:id", updateItem(lib))
	rg.DELETE("/:id", deleteItem(lib))
	rg.POST("/:id/shares", shareItem(lib))
}

type listResp struct {
	Items  []domainitem.Item `json:"items"`
	Counts domainitem.Counts `json:"counts"`
	Filter domainitem.Filter `json:"filter"`
}

// listItems returns the filtered list plus counts over the unfiltered list.
func listItems(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := domainitem.ParseFilter(c.Query("type"))
		if err != nil {
			httperr.Write(c, err)
			return
		}

		items, err := lib.Items(c.Request.Context())
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, listResp{
			Items:  domainitem.ApplyFilter(items, filter),
			Counts: domainitem.CountByType(items),
			Filter: filter,
		})
	}
}

type itemReq struct {
	Title   *string         `json:"title"`
	Content string          `json:"content"`
	Type    domainitem.Type `json:"type"`
}

func createItem(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req itemReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}

		it, err := lib.CreateItem(c.Request.Context(), req.Title, req.Content, req.Type)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func updateItem(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httperr.BadRequest(c, "invalid id")
			return
		}

		var req itemReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}

		it, err := lib.UpdateItem(c.Request.Context(), id, domainitem.Patch{
			Title:   req.Title,
			Content: req.Content,
			Type:    req.Type,
		})
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func deleteItem(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httperr.BadRequest(c, "invalid id")
			return
		}

		if err := lib.DeleteItem(c.Request.Context(), id); err != nil {
			httperr.Write(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type shareReq struct {
	RecipientIDs []uuid.UUID `json:"recipient_ids"`
	Message      *string     `json:"message"`
}

func shareItem(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httperr.BadRequest(c, "invalid id")
			return
		}

		var req shareReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}

		grants, err := lib.Share(c.Request.Context(), id, req.RecipientIDs, req.Message)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusCreated, grants)
	}
}
