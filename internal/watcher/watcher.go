// Package watcher feeds the ingest pipeline from a drop directory.
// Scanner output files written into the directory are parsed by
// extension and imported; processed files are renamed with a .done
// suffix so restarts do not re-import them.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"netograph/internal/adapter"
	"netograph/internal/service"
)

const settleDelay = 500 * time.Millisecond

// Watcher monitors a drop directory for scanner output
type Watcher struct {
	dir     string
	ingest  *service.IngestService
	watcher *fsnotify.Watcher
}

// New creates a watcher over the given directory, creating it if needed
func New(dir string, ingest *service.IngestService) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ingest dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{dir: dir, ingest: ingest, watcher: fsw}, nil
}

// Run processes pre-existing files and then watches for new ones until
// the context is canceled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.processExisting(ctx)
	log.Printf("Ingest watcher running on %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			// Let the writer finish before reading.
			time.Sleep(settleDelay)
			w.processFile(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Ingest watcher error: %v", err)
		}
	}
}

func (w *Watcher) processExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Printf("Ingest watcher: read dir: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.processFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) processFile(ctx context.Context, path string) {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".done") || strings.HasPrefix(name, ".") {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Ingest watcher: read %s: %v", name, err)
		}
		return
	}

	if err := w.importData(ctx, name, data); err != nil {
		log.Printf("Ingest watcher: import %s: %v", name, err)
		return
	}

	if err := os.Rename(path, path+".done"); err != nil {
		log.Printf("Ingest watcher: rename %s: %v", name, err)
	}
}

// importData routes a file to a parser by extension: .xml is nmap
// output, .arp/.neigh are neighbor tables, .conn/.ss are socket
// listings
func (w *Watcher) importData(ctx context.Context, name string, data []byte) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		hosts, err := adapter.ParseNmapXML(data)
		if err != nil {
			return err
		}
		_, err = w.ingest.IngestHosts(ctx, hosts, "nmap")
		return err

	case ".arp", ".neigh":
		entries := adapter.ParseArpTable(data)
		_, err := w.ingest.IngestArpEntries(ctx, entries, "arp_table")
		return err

	case ".conn", ".ss", ".netstat":
		conns := adapter.ParseConnections(data)
		_, err := w.ingest.IngestConnections(ctx, conns, "netstat")
		return err

	default:
		return fmt.Errorf("unrecognized file type %q", name)
	}
}
