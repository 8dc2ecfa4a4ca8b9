package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"repurpose.znkr.io/repurpose/rewrite"
	"repurpose.znkr.io/repurpose/server"
)

func serveCmd() *cobra.Command {
	var addr, catalog string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalog)
			if err != nil {
				return fmt.Errorf("loading catalog: %v", err)
			}

			state := &server.State{Catalog: cat}
			switch c, err := rewrite.OpenAIFromEnv(); {
			case errors.Is(err, rewrite.ErrNoAPIKey):
				log.Printf("%v, rewriting is disabled", err)
			case err != nil:
				return err
			default:
				state.Completer = c
			}

			// Start serving.
			s, err := server.Run(addr, state)
			if err != nil {
				return err
			}
			defer s.Shutdown(context.Background())
			log.Printf("Now serving at http://%s, press Ctrl-C to shut down", s.Addr())

			// Setup signals to react to Ctrl-C.
			sigint := make(chan os.Signal, 1)
			signal.Notify(sigint, os.Interrupt)

			if catalog == "" {
				select {
				case err := <-s.Error():
					return fmt.Errorf("serving: %v", err)
				case <-sigint:
					fmt.Print("\r") // remove Ctrl-C output characters
					log.Printf("Received Ctrl-C, shutting down")
					return nil
				}
			}

			// Editors often replace a file instead of writing it, so the directory is watched and
			// events are filtered by name.
			file, err := filepath.Abs(catalog)
			if err != nil {
				return fmt.Errorf("resolving catalog path: %v", err)
			}
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %v", err)
			}
			defer watcher.Close()
			if err := watcher.Add(filepath.Dir(file)); err != nil {
				return fmt.Errorf("starting watch: %v", err)
			}
			log.Printf("Watching %s", catalog)

			for {
				select {
				case event := <-watcher.Events:
					// Absolutely no need to react to chmod.
					if event.Has(fsnotify.Chmod) || filepath.Clean(event.Name) != file {
						continue
					}
					if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
						log.Printf("Catalog %s removed, keeping the current one", catalog)
						continue
					}

					start := time.Now()
					cat, err := loadCatalog(file)
					if err != nil {
						log.Printf("failed to update catalog: %v", err)
						continue
					}
					s.ReplaceCatalog(cat)
					log.Printf("Catalog reloaded (%v)", time.Since(start))
				case err := <-watcher.Errors:
					return fmt.Errorf("watching: %v", err)
				case err := <-s.Error():
					return fmt.Errorf("serving: %v", err)
				case <-sigint:
					fmt.Print("\r") // remove Ctrl-C output characters
					log.Printf("Received Ctrl-C, shutting down")
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "address to listen on")
	cmd.Flags().StringVar(&catalog, "catalog", "", "purpose catalog file, reloaded on change (default: built-in catalog)")
	return cmd
}
