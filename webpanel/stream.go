package webpanel

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hpcloud/tail"
	log "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleStream pushes every line appended to the newest log file to the
// client until it disconnects
func (s *Server) handleStream(c *gin.Context) {
	path, err := LatestLogFile(s.config.LogDir, s.config.FilePrefix)
	if err != nil {
		if errors.Is(err, ErrNoLogFile) {
			c.String(http.StatusNotFound, "No log file found.")
			return
		}
		c.String(http.StatusInternalServerError, "Failed to read logs.")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Log stream upgrade failed")
		return
	}
	defer conn.Close()

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      s.config.PollFiles,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		log.WithError(err).WithField("file", path).Error("Failed to tail log file")
		return
	}
	defer t.Cleanup()
	defer t.Stop()

	fields := log.Fields{"file": path, "remote": c.Request.RemoteAddr}
	log.WithFields(fields).Info("Log stream client connected")

	// The client never sends anything; reading detects the disconnect
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			log.WithFields(fields).Info("Log stream client disconnected")
			return

		case line, ok := <-t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				log.WithFields(fields).WithError(line.Err).Warn("Log tail error")
				continue
			}
			if strings.TrimSpace(line.Text) == "" {
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line.Text)); err != nil {
				return
			}
		}
	}
}
