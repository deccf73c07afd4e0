package ranobe

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/VariableSan/ranobe-scraper/internal/cache"
	"github.com/VariableSan/ranobe-scraper/internal/progress"
	"github.com/VariableSan/ranobe-scraper/internal/scrape"
)

// RanobeLibHandler adds the site-specific extras (login-form flow and JSON
// search passthrough) on top of the shared surface.
type RanobeLibHandler struct {
	*Handler
	Lib *scrape.RanobeLib
}

func NewRanobeLibHandler(lib *scrape.RanobeLib, store *cache.Store, sessions Opener, hub *progress.Hub, outputDir string) *RanobeLibHandler {
	return &RanobeLibHandler{
		Handler: NewHandler(lib, store, sessions, hub, outputDir),
		Lib:     lib,
	}
}

func (h *RanobeLibHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.Handler.RegisterRoutes(rg)
	rg.POST("/login", h.login)
	rg.GET("/search", h.search)
}

// login runs the site's own sign-in form inside a fresh session and stores
// the captured identity. With no credentials configured the call is a
// successful no-op and the adapter keeps working unauthenticated.
func (h *RanobeLibHandler) login(c *gin.Context) {
	p, _, done, err := h.openSession(c)
	if err != nil {
		log.Printf("[%s] open session: %v", h.Lib.Name(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	defer done()

	if err := h.Lib.SignIn(p); err != nil {
		// a broken login must not break unauthenticated use
		log.Printf("[%s] login suppressed: %v", h.Lib.Name(), err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *RanobeLibHandler) search(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	kind := c.DefaultQuery("type", "manga")

	p, _, done, err := h.openSession(c)
	if err != nil {
		log.Printf("[%s] open session: %v", h.Lib.Name(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	defer done()

	raw, err := h.Lib.Search(p, title, kind)
	if err != nil {
		log.Printf("[%s] search %q: %v", h.Lib.Name(), title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}
