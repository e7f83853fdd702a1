package backend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learningorchestra/orchestra/pkg/client"
)

type server struct {
	config *Config
	store  *store
}

// handlers serve a single microservice.
type handlers struct {
	*server
	namespace string
	path      string
}

// nameKeys are the body parameters a created resource may be named by, in
// order of precedence.
var nameKeys = []string{
	"builderName",
	"histogramName",
	"pcaName",
	"tsneName",
	client.RouteKey,
}

type header struct {
	Name string `uri:"name" binding:"required"`
	View string `uri:"view"`
}

type page struct {
	Query string `form:"query"`
	Limit int    `form:"limit,default=20" binding:"gte=0"`
	Skip  int    `form:"skip,default=0" binding:"gte=0"`
}

func (h *handlers) create(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": err.Error()})
		return
	}

	name := c.Param("name")
	if name == "" {
		name = nameOf(body)
	}
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"result": "missing resource name"})
		return
	}

	url := h.path + name
	if !h.store.create(h.namespace, name, kindOf(body), url, body, h.config.Polls) {
		c.JSON(http.StatusConflict, gin.H{"result": "duplicated name: " + name})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"result": url + h.config.Marker})
}

func (h *handlers) update(c *gin.Context) {
	var uri header
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": err.Error()})
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": err.Error()})
		return
	}

	if !h.store.update(h.namespace, uri.Name, body, h.config.Polls) {
		c.JSON(http.StatusNotFound, gin.H{"result": "not found: " + uri.Name})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": h.path + uri.Name + h.config.Marker})
}

func (h *handlers) delete(c *gin.Context) {
	name := c.Param("name")
	if !h.store.delete(h.namespace, name) {
		c.JSON(http.StatusNotFound, gin.H{"result": "not found: " + name})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "deleted " + name})
}

func (h *handlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"result": h.store.list(h.namespace)})
}

// read serves the content of a resource. The metadata record always comes
// first, followed by the request parameters the resource was built from.
func (h *handlers) read(c *gin.Context) {
	var q page
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": err.Error()})
		return
	}

	name := c.Param("name")
	record, params, ok := h.store.read(h.namespace, name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"result": "not found: " + name})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": paginate([]any{record, params}, q)})
}

func (h *handlers) view(c *gin.Context) {
	var uri header
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": err.Error()})
		return
	}

	var q page
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": err.Error()})
		return
	}

	record, params, ok := h.store.read(h.namespace, uri.Name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"result": "not found: " + uri.Name})
		return
	}

	switch uri.View {
	case "plot":
		c.JSON(http.StatusOK, gin.H{"result": record.URL + "/plot.png"})
	case "predictions":
		c.JSON(http.StatusOK, gin.H{"result": paginate(predictions(record, params), q)})
	default:
		c.JSON(http.StatusNotFound, gin.H{"result": "unknown view: " + uri.View})
	}
}

func nameOf(body map[string]any) string {
	for _, key := range nameKeys {
		if name, ok := body[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}

func kindOf(body map[string]any) string {
	if tool, ok := body["tool"].(string); ok {
		return tool
	}
	if tool, ok := body["toolName"].(string); ok {
		return tool
	}
	return "dataset"
}

// predictions lists one entry per classifier of a build.
func predictions(record *client.Record, params map[string]any) []any {
	classifiers, _ := params["classifiersList"].([]any)

	entries := make([]any, 0, len(classifiers))
	for _, classifier := range classifiers {
		entries = append(entries, gin.H{
			"builderName": record.DatasetName,
			"classifier":  classifier,
			"finished":    record.Finished,
		})
	}

	return entries
}

func paginate(items []any, q page) []any {
	if q.Skip >= len(items) {
		return []any{}
	}
	items = items[q.Skip:]

	if q.Limit > 0 && q.Limit < len(items) {
		items = items[:q.Limit]
	}
	return items
}
