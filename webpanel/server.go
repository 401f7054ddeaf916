package webpanel

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const logsPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>guildkeeper logs</title>
<style>
body { background: #1e1f22; color: #dbdee1; font-family: monospace; margin: 1em; }
h1 { color: #bf8eef; font-size: 1.2em; }
li { list-style: none; padding: 2px 0; border-bottom: 1px solid #2b2d31; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.File}}</h1>
<ul id="logs">
{{range .Lines}}<li>{{.}}</li>
{{end}}</ul>
<script>
const list = document.getElementById("logs");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/logs/stream");
ws.onmessage = (ev) => {
  const li = document.createElement("li");
  li.textContent = ev.data;
  list.insertBefore(li, list.firstChild);
};
</script>
</body>
</html>`

// Config holds log panel configuration
type Config struct {
	Port       int
	LogDir     string
	FilePrefix string
	TailLines  int
	PollFiles  bool // Poll for file changes instead of using inotify
}

// Server serves the newest log file over HTTP and a websocket
type Server struct {
	config    Config
	router    *gin.Engine
	startTime time.Time
}

// NewServer creates the panel and registers its routes
func NewServer(config Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New("logs").Parse(logsPage)))

	s := &Server{
		config:    config,
		router:    router,
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/logs", s.handleLogs)
	s.router.GET("/logs/stream", s.handleStream)
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", s.config.Port).Info("Log panel listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleLogs(c *gin.Context) {
	path, err := LatestLogFile(s.config.LogDir, s.config.FilePrefix)
	if err != nil {
		if errors.Is(err, ErrNoLogFile) {
			c.String(http.StatusNotFound, "No log file found.")
			return
		}
		log.WithError(err).Error("Failed to find log file")
		c.String(http.StatusInternalServerError, "Failed to read logs.")
		return
	}

	lines, err := RecentLines(path, s.config.TailLines)
	if err != nil {
		log.WithError(err).WithField("file", path).Error("Failed to read log file")
		c.String(http.StatusInternalServerError, "Failed to read logs.")
		return
	}

	c.HTML(http.StatusOK, "logs", gin.H{
		"File":  path,
		"Lines": lines,
	})
}
