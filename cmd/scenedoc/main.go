/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"scenedoc/internal/backend"
	"scenedoc/internal/config"
	"scenedoc/internal/crash"
	"scenedoc/internal/domain"
	"scenedoc/internal/export"
	applog "scenedoc/internal/log"
	"scenedoc/internal/preview"
	"scenedoc/internal/storage"
	"scenedoc/internal/ui"
	"scenedoc/internal/version"
)

func usage() {
	fmt.Println("SceneDoc — structured documents with embedded vector scenes")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scenedoc version|-v|--version           Show version")
	fmt.Println("  scenedoc init <dir> <id>                Create a new document at <dir> with id <id>")
	fmt.Println("  scenedoc open <dir>                     Open document at <dir> and print summary")
	fmt.Println("  scenedoc save <dir>                     Save document at <dir> (creates backup)")
	fmt.Println("  scenedoc render <dir> <nodeKey>         Render a scene node's SVG preview to stdout")
	fmt.Println("  scenedoc export-html <dir> [out.html]   Export the document as HTML")
	fmt.Println("  scenedoc export-pdf <dir> [out.pdf]     Export the document as PDF")
	fmt.Println("  scenedoc push <dir> <nodeKey>           Push a scene payload to the backend")
	fmt.Println("  scenedoc fetch <nodeKey>                Fetch a scene payload from the backend")
	fmt.Println("  scenedoc serve                          Run the scene-sync server")
	fmt.Println("  scenedoc ui [<dir>]                     Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var h *storage.DocumentHandle
	defer func() { crash.Recover(h) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("SceneDoc — structured documents with embedded vector scenes")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <id>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			id := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init document", slog.String("root", abs), slog.String("id", id))
			nh, err := storage.Init(abs, domain.NewDocument(id))
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h = nh
			fmt.Println("Created document at", abs)
			return
		case "open":
			h = mustOpen(l, args)
			scenes := 0
			for _, n := range h.Doc.Nodes() {
				if n.Kind == domain.KindScene {
					scenes++
				}
			}
			fmt.Printf("Opened document: %s\n", h.Doc.ID)
			fmt.Printf("Nodes: %d (%d scenes)\n", h.Doc.Len(), scenes)
			fmt.Println("Root:", h.Root)
			return
		case "save":
			h = mustOpen(l, args)
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved document and created a backup of previous manifest (if any).")
			return
		case "render":
			if len(args) < 4 {
				fmt.Println("render requires <dir> and <nodeKey>")
				usage()
				os.Exit(2)
			}
			h = mustOpen(l, args)
			key := domain.NodeKey(args[3])
			n, ok := h.Doc.Find(key)
			if !ok || n.Kind != domain.KindScene {
				fmt.Println("Error: no scene node with key", args[3])
				os.Exit(1)
			}
			res, err := preview.NewRenderer().Render(n.Scene)
			if err != nil {
				l.Error("render failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if res.Empty {
				fmt.Println("(empty scene)")
				return
			}
			fmt.Print(res.SVG)
			return
		case "export-html":
			h = mustOpen(l, args)
			out := "document.html"
			if len(args) >= 4 {
				out = args[3]
			}
			if err := export.ExportHTML(h, preview.NewRenderer(), out, export.HTMLOptions{}); err != nil {
				l.Error("export-html failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "export-pdf":
			h = mustOpen(l, args)
			out := "document.pdf"
			if len(args) >= 4 {
				out = args[3]
			}
			if err := export.ExportPDF(h, preview.NewRenderer(), out, export.PDFOptions{}); err != nil {
				l.Error("export-pdf failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "push":
			if len(args) < 4 {
				fmt.Println("push requires <dir> and <nodeKey>")
				usage()
				os.Exit(2)
			}
			h = mustOpen(l, args)
			key := domain.NodeKey(args[3])
			n, ok := h.Doc.Find(key)
			if !ok || n.Kind != domain.KindScene {
				fmt.Println("Error: no scene node with key", args[3])
				os.Exit(1)
			}
			c := backendClient(l)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := c.PushScene(ctx, h.Doc.ID, n.Scene); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Pushed scene", args[3])
			return
		case "fetch":
			if len(args) < 3 {
				fmt.Println("fetch requires <nodeKey>")
				usage()
				os.Exit(2)
			}
			c := backendClient(l)
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			env, err := c.FetchScene(ctx, args[2])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Scene %s (doc %s, format v%d):\n%s\n", env.NodeKey, env.DocID, env.Scene.Version, env.Scene.Data)
			return
		case "serve":
			if err := backend.Start(); err != nil {
				l.Error("server failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func mustOpen(l *slog.Logger, args []string) *storage.DocumentHandle {
	if len(args) < 3 {
		fmt.Println(args[1], "requires <dir>")
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open document", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}

func backendClient(l *slog.Logger) *backend.Client {
	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	return backend.NewClient(cfg.Backend.BaseURL, token)
}
