package backend

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learningorchestra/orchestra/internal/metrics"
	"github.com/learningorchestra/orchestra/internal/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
)

// Prefix is the path every microservice is mounted under.
const Prefix = "/api/learningOrchestra/v1/"

// StatusSuffix is appended to a resource url to read its metadata.
const StatusSuffix = "?query=%7B%7D&limit=1&skip=0"

// services maps each microservice to its path below Prefix and to the
// namespace its resources live in. Transform services edit datasets, so they
// share the dataset namespace.
var services = []struct {
	name      string
	path      string
	namespace string
}{
	{orchestra.DatasetService, "dataset", orchestra.DatasetService},
	{orchestra.ProjectionService, "transform/projection", orchestra.DatasetService},
	{orchestra.DataTypeService, "transform/datatype", orchestra.DatasetService},
	{orchestra.TransformService, "transform/tool", orchestra.DatasetService},
	{orchestra.HistogramService, "explore/histogram", orchestra.HistogramService},
	{orchestra.PCAService, "explore/pca", orchestra.PCAService},
	{orchestra.TSNEService, "explore/tsne", orchestra.TSNEService},
	{orchestra.ExploreService, "explore/tool", orchestra.ExploreService},
	{orchestra.BuilderService, "builder", orchestra.BuilderService},
}

type Config struct {
	Addr         string
	Timeout      time.Duration
	Polls        int
	Marker       string
	Secret       string
	ClockSkew    time.Duration
	AllowOrigins []string
}

// Backend is an in memory stand in for the learning orchestra
// microservices. Every submission stays pending for a configurable number
// of status polls.
type Backend struct {
	config *Config
	server *http.Server
	logger *slog.Logger
}

func New(config *Config, metrics *metrics.Metrics, logger *slog.Logger) *Backend {
	util.Assert(config.Polls >= 0, "polls must be non negative")
	util.Assert(config.Marker != "", "marker must be set")

	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), logRequests(logger))

	if len(config.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  config.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposeHeaders: []string{"X-Request-Id"},
			MaxAge:        12 * time.Hour,
		}))
	}

	if auth := newAuthenticator(config.Secret, config.ClockSkew); auth != nil {
		r.Use(auth.middleware())
	}

	s := &server{
		config: config,
		store:  newStore(),
	}

	for _, svc := range services {
		g := r.Group(Prefix + svc.path)
		g.Use(observe(metrics, svc.name))

		h := &handlers{server: s, namespace: svc.namespace, path: Prefix + svc.path + "/"}
		g.GET("/", h.list)
		g.POST("/", h.create)
		g.POST("/:name", h.create)
		g.PUT("/:name", h.update)
		g.PATCH("/:name", h.update)
		g.DELETE("/:name", h.delete)
		g.GET("/:name", h.read)
		g.GET("/:name/:view", h.view)
	}

	return &Backend{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: r,
		},
	}
}

func (b *Backend) Handler() http.Handler {
	return b.server.Handler
}

// Routes returns the client route table for the backend: one entry per
// microservice plus, for each of names, the routed entry of every
// microservice.
func (b *Backend) Routes(names ...string) map[string]string {
	routes := make(map[string]string, len(services)*(len(names)+1))
	for _, svc := range services {
		routes[svc.name] = Prefix + svc.path + "/"
		for _, name := range names {
			routes[svc.name+name] = Prefix + svc.path + "/" + name
		}
	}
	return routes
}

// ClientConfig returns a client configuration targeting the backend at
// address. Routed requests are only resolvable for names.
func (b *Backend) ClientConfig(address string, interval time.Duration, names ...string) *client.Config {
	return &client.Config{
		Address:       address,
		Routes:        b.Routes(names...),
		PendingMarker: b.config.Marker,
		StatusSuffix:  StatusSuffix,
		PollInterval:  interval,
	}
}

func (b *Backend) Start(errors chan<- error) {
	b.logger.Info("starting backend", "addr", b.config.Addr)
	if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errors <- err
	}
}

func (b *Backend) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.Timeout)
	defer cancel()

	return b.server.Shutdown(ctx)
}

func (b *Backend) String() string {
	return "backend"
}

// Middleware

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func logRequests(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"id", c.Writer.Header().Get("X-Request-Id"))
	}
}

func observe(metrics *metrics.Metrics, service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.BackendTotal.WithLabelValues(service, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
