// Package ranobe exposes the scraping pipeline over HTTP: one handler set
// per source site, selected at route registration. Handlers own the
// request choreography (correlation id, cache consultation, session
// lifetime, epub assembly); all site knowledge lives in the adapters.
package ranobe

import (
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/VariableSan/ranobe-scraper/internal/cache"
	"github.com/VariableSan/ranobe-scraper/internal/epub"
	"github.com/VariableSan/ranobe-scraper/internal/progress"
	"github.com/VariableSan/ranobe-scraper/internal/scrape"
	"github.com/VariableSan/ranobe-scraper/internal/session"
	"github.com/VariableSan/ranobe-scraper/pkg/models"
	"github.com/VariableSan/ranobe-scraper/pkg/utils"
)

// Opener is the slice of the session manager the handlers need. Cancel must
// be idempotent; the handlers call it both on client disconnect and on
// normal completion.
type Opener interface {
	Open(id string) (scrape.Pager, error)
	Cancel(id string)
}

// ManagerOpener adapts *session.Manager to the Opener interface.
type ManagerOpener struct {
	M *session.Manager
}

func (o ManagerOpener) Open(id string) (scrape.Pager, error) { return o.M.Open(id) }
func (o ManagerOpener) Cancel(id string)                     { o.M.Cancel(id) }

// Handler serves the shared catalog/chapters/download surface for one site.
type Handler struct {
	Adapter   scrape.Adapter
	Cache     *cache.Store
	Sessions  Opener
	Hub       *progress.Hub
	OutputDir string
}

func NewHandler(adapter scrape.Adapter, store *cache.Store, sessions Opener, hub *progress.Hub, outputDir string) *Handler {
	return &Handler{
		Adapter:   adapter,
		Cache:     store,
		Sessions:  sessions,
		Hub:       hub,
		OutputDir: outputDir,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ranobe-list", h.ranobeList)
	rg.GET("/chapters", h.chapters)
	rg.POST("/download", h.download)
}

// openSession acquires a fresh automation session for this request and wires
// the disconnect signal: when the client goes away the session's browser is
// released even mid-navigation. The returned cleanup is idempotent.
func (h *Handler) openSession(c *gin.Context) (scrape.Pager, string, func(), error) {
	uid := uuid.NewString()
	p, err := h.Sessions.Open(uid)
	if err != nil {
		return nil, "", nil, err
	}

	go func() {
		<-c.Request.Context().Done()
		h.Sessions.Cancel(uid)
	}()

	return p, uid, func() { h.Sessions.Cancel(uid) }, nil
}

func (h *Handler) ranobeList(c *gin.Context) {
	site := h.Adapter.Name()

	if !reloadRequested(c) {
		cached, err := h.Cache.ReadCatalog(c.Request.Context(), site)
		if err != nil {
			log.Printf("[%s] catalog cache read: %v", site, err)
		}
		if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	p, uid, done, err := h.openSession(c)
	if err != nil {
		log.Printf("[%s] open session: %v", site, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog fetch failed"})
		return
	}
	defer done()

	h.Hub.Publish(progress.Event{Type: progress.EventCatalogStarted, Site: site, UID: uid})

	entries, err := h.Adapter.Catalog(p)
	if err != nil {
		log.Printf("[%s] catalog scrape: %v", site, err)
		h.Hub.Publish(progress.Event{Type: progress.EventFailed, Site: site, UID: uid})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog fetch failed"})
		return
	}

	if len(entries) > 0 {
		if err := h.Cache.WriteCatalog(c.Request.Context(), site, entries); err != nil {
			log.Printf("[%s] catalog cache write: %v", site, err)
		}
	}

	h.Hub.Publish(progress.Event{Type: progress.EventCatalogDone, Site: site, UID: uid, Count: len(entries)})
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) chapters(c *gin.Context) {
	site := h.Adapter.Name()

	href := c.Query("href")
	if href == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "href is required"})
		return
	}
	title := c.Query("title")
	translate := c.Query("translate")

	if !reloadRequested(c) && title != "" {
		cached, err := h.Cache.ReadChapters(c.Request.Context(), site, title)
		if err != nil {
			log.Printf("[%s] chapters cache read: %v", site, err)
		}
		if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	p, uid, done, err := h.openSession(c)
	if err != nil {
		log.Printf("[%s] open session: %v", site, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chapters fetch failed"})
		return
	}
	defer done()

	h.Hub.Publish(progress.Event{Type: progress.EventChaptersStarted, Site: site, UID: uid, Message: href})

	result, err := h.Adapter.Chapters(p, href, translate)
	if err != nil {
		log.Printf("[%s] chapters scrape %s: %v", site, href, err)
		h.Hub.Publish(progress.Event{Type: progress.EventFailed, Site: site, UID: uid})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chapters fetch failed"})
		return
	}

	if len(result.Chapters) > 0 && title != "" {
		if err := h.Cache.WriteChapters(c.Request.Context(), site, title, result.Chapters, href, result.Cover); err != nil {
			log.Printf("[%s] chapters cache write: %v", site, err)
		}
	}

	h.Hub.Publish(progress.Event{Type: progress.EventChaptersDone, Site: site, UID: uid, Count: len(result.Chapters)})
	c.JSON(http.StatusOK, result)
}

type downloadReq struct {
	Title          string   `json:"title"`
	RanobeHrefList []string `json:"ranobeHrefList"`
	Reload         bool     `json:"reload"`
}

func (h *Handler) download(c *gin.Context) {
	site := h.Adapter.Name()

	var req downloadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Title == "" || len(req.RanobeHrefList) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and ranobeHrefList are required"})
		return
	}

	rng := h.Adapter.Range(req.RanobeHrefList)
	bookPath := utils.BookFilePath(h.OutputDir, req.Title, rng.Start, rng.End)
	bookName := utils.BookFileName(req.Title, rng.Start, rng.End)

	// the output name is deterministic, so an existing file already answers
	// this exact request
	if !req.Reload {
		if _, err := os.Stat(bookPath); err == nil {
			c.FileAttachment(bookPath, bookName)
			return
		}
	}

	var contents []models.ChapterContent
	if !req.Reload {
		cached, err := h.Cache.ReadDownload(c.Request.Context(), site, req.Title, rng)
		if err != nil {
			log.Printf("[%s] download cache read: %v", site, err)
		}
		contents = cached
	}

	if contents == nil {
		p, uid, done, err := h.openSession(c)
		if err != nil {
			log.Printf("[%s] open session: %v", site, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
			return
		}
		defer done()

		h.Hub.Publish(progress.Event{Type: progress.EventDownloadStarted, Site: site, UID: uid, Count: len(req.RanobeHrefList)})

		contents, err = h.Adapter.Download(p, req.RanobeHrefList)
		if err != nil || len(contents) == 0 {
			log.Printf("[%s] download scrape: %v (%d chapters)", site, err, len(contents))
			h.Hub.Publish(progress.Event{Type: progress.EventFailed, Site: site, UID: uid})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
			return
		}

		if err := h.Cache.WriteDownload(c.Request.Context(), site, req.Title, rng, contents); err != nil {
			log.Printf("[%s] download cache write: %v", site, err)
		}

		h.Hub.Publish(progress.Event{Type: progress.EventDownloadDone, Site: site, UID: uid, Count: len(contents)})
	}

	gen := epub.NewGenerator(models.BookMeta{Title: req.Title}, orderContents(contents), rng, h.OutputDir)
	path, name, err := gen.Generate()
	if err != nil {
		log.Printf("[%s] epub assembly: %v", site, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		return
	}

	h.Hub.Publish(progress.Event{Type: progress.EventBookReady, Site: site, Message: name})
	c.FileAttachment(path, name)
}

// orderContents sorts chapters ascending by (volume, chapter) when every
// ordinal in the batch is numeric. Any non-numeric ordinal keeps the whole
// batch in selection order: a partial sort would interleave chapters worse
// than no sort at all.
func orderContents(contents []models.ChapterContent) []models.ChapterContent {
	type entry struct {
		vol, chap int
		ch        models.ChapterContent
	}
	entries := make([]entry, len(contents))
	for i, ch := range contents {
		vol, err := strconv.Atoi(ch.Volume)
		if err != nil {
			return contents
		}
		chap, err := strconv.Atoi(ch.Chapter)
		if err != nil {
			return contents
		}
		entries[i] = entry{vol, chap, ch}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].vol != entries[j].vol {
			return entries[i].vol < entries[j].vol
		}
		return entries[i].chap < entries[j].chap
	})

	ordered := make([]models.ChapterContent, len(entries))
	for i, e := range entries {
		ordered[i] = e.ch
	}
	return ordered
}

// reloadRequested interprets the cache-bypass query flag.
func reloadRequested(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("reload", "false"))
	return err == nil && v
}
