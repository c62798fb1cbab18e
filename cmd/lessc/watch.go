package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchAndCompile recompiles entry every time a .less file directly inside
// entry's directory is written or created, writing the result via
// compileOnce. Subdirectories are not watched. It blocks until
// ctx is canceled or the watcher's channels close.
func watchAndCompile(ctx context.Context, entry string, stdout, stderr io.Writer, compileOnce func() error, metrics *compileMetrics) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(entry)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "watching %s for changes\n", dir)
	if err := compileOnce(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		metrics.errors.WithLabelValues("compile").Inc()
	} else {
		metrics.compiles.WithLabelValues("initial").Inc()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".less" {
				continue
			}
			fmt.Fprintf(stdout, "%s changed, recompiling\n", event.Name)
			if err := compileOnce(); err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
				metrics.errors.WithLabelValues("compile").Inc()
				continue
			}
			metrics.compiles.WithLabelValues("watch").Inc()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(stderr, "watcher error: %v\n", err)
		}
	}
}
