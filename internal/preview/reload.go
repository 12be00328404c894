package preview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// reloadScript is injected at the bottom of every preview page. The client
// reconnects by reloading; a dev tool does not need a retry ladder.
const reloadScript = `<script>
(function () {
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + "/livereload");
  ws.onmessage = function () { location.reload(); };
})();
</script>`

var reloadPayload = []byte(`{"type":"reload"}`)

type reloadHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newReloadHub() *reloadHub {
	return &reloadHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *reloadHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *reloadHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

func (h *reloadHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *reloadHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	h.conns = make(map[*websocket.Conn]struct{})
}

func (s *Server) handleLiveReload(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.add(conn)
	defer func() {
		s.hub.remove(conn)
		_ = conn.Close()
	}()

	// The client never sends anything useful; reading just detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// watch polls the content directory and, on any change, re-syncs the store,
// rebuilds the search index, and tells open tabs to reload.
func (s *Server) watch(ctx context.Context) {
	last, err := snapshotDir(s.cfg.ContentDir, s.cfg.Pattern)
	if err != nil {
		s.logger.Warn("preview: watch disabled", "error", err)
		return
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := snapshotDir(s.cfg.ContentDir, s.cfg.Pattern)
		if err != nil {
			s.logger.Warn("preview: snapshot failed", "error", err)
			continue
		}
		if current == last {
			continue
		}
		last = current

		s.logger.Info("preview: content changed, syncing")
		if _, err := s.content.Sync(ctx, s.cfg.ContentDir, interfaces.SyncOptions{UpdateExisting: true}); err != nil {
			s.logger.Error("preview: sync failed", "error", err)
		}
		s.refreshIndex(ctx)
		s.hub.broadcast(reloadPayload)
	}
}

// snapshotDir fingerprints the post files under dir by path, size, and
// modification time. WalkDir visits lexically, so the digest is stable.
func snapshotDir(dir, pattern string) (string, error) {
	sum := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return matchErr
		}
		if !matched {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		fmt.Fprintf(sum, "%s|%d|%d\n", path, info.Size(), info.ModTime().UnixNano())
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}
