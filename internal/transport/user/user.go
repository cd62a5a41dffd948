package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	"github.com/alanyang/promptshelf/internal/service/library"
	"github.com/alanyang/promptshelf/internal/transport/httperr"
)

// Register mounts the directory under /users and the caller's own profile under /profile.
func Register(rg *gin.RouterGroup, lib *library.Library) {
	rg.GET("/users", listUsers(lib))
	rg.GET("/users/search", searchUsers(lib))
	rg.GET("/profile/me", currentProfile(lib))
	rg.PATCH("/profile/me", updateProfile(lib))
}

func listUsers(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := lib.Users(c.Request.Context())
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

type searchResp struct {
	Seq   int64                       `json:"seq,omitempty"`
	Users []domainprofile.UserProfile `json:"users"`
}

// searchUsers echoes seq so clients can match responses to keystrokes.
func searchUsers(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		var seq int64
		if v := c.Query("seq"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				httperr.BadRequest(c, "invalid seq")
				return
			}
			seq = n
		}

		users, err := lib.SearchUsers(c.Request.Context(), c.Query("q"), seq)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, searchResp{Seq: seq, Users: users})
	}
}

func currentProfile(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := lib.CurrentProfile(c.Request.Context())
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func updateProfile(lib *library.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch domainprofile.Patch
		if err := c.ShouldBindJSON(&patch); err != nil {
			httperr.BadRequest(c, err.Error())
			return
		}

		p, err := lib.UpdateProfile(c.Request.Context(), patch)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
