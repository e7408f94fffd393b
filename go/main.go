package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/rmmh/blockfaces/go/config"
	"github.com/rmmh/blockfaces/go/render"
	rp "github.com/rmmh/blockfaces/go/resourcepack"
	"github.com/rmmh/blockfaces/go/store"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: blockfaces [flags] <command> [args]

commands:
  blocks                      list the blocks of the pack
  options <block>             list the state keys and values of a block
  model <model>               print a model with its parents merged in
  render <block> [k=v,...]    print the faces of a block state as JSON
  export <out.db|out.jsonl.zst> [blocks...]
                              render every declared state of the blocks
  serve                       answer the above over HTTP
  fetch [version]             download a client jar

flags:`)
	flag.PrintDefaults()
}

func setupLogging(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func jarPath(cfg config.Config, version string) string {
	return filepath.Join(cfg.Cache, "client-"+version+".jar")
}

// openPack opens the configured pack, downloading a client jar if only a
// version is configured and falling back to the local launcher install.
func openPack(ctx context.Context, cfg config.Config) (*rp.FSSource, io.Closer, error) {
	pack := cfg.Pack
	if pack == "" && cfg.Version != "" {
		pack = jarPath(cfg, cfg.Version)
		if err := rp.DownloadMinecraftJar(ctx, pack, cfg.Version); err != nil {
			return nil, nil, err
		}
	}
	if pack == "" {
		pack = rp.LocateMinecraftJar()
	}
	if pack == "" {
		return nil, nil, fmt.Errorf("no pack given and no client jar in ~/.minecraft; use -pack or -version")
	}
	slog.Debug("opening pack", "path", pack)

	src, closer, err := rp.Open(pack)
	if err != nil {
		return nil, nil, err
	}
	src.Validate = cfg.Validate
	src.Strict = cfg.Strict
	return src, closer, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	pack := flag.String("pack", "", "resource pack directory or client jar")
	version := flag.String("version", "", "client jar version to download when no pack is given")
	concurrency := flag.Int("concurrency", 0, "parallel loads per batch (default from config, else NumCPU)")
	listen := flag.String("listen", "", "HTTP listen address for serve")
	faces := flag.String("faces", "", "faces to render, comma separated (default all)")
	strict := flag.Bool("strict", false, "warn when a definition doesn't survive decoding unchanged")
	validate := flag.Bool("validate", false, "check definitions against their JSON schemas")
	rejectTinted := flag.Bool("reject-tinted", false, "fail faces that declare a tintindex")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pack":
			cfg.Pack = *pack
		case "version":
			cfg.Version = *version
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "listen":
			cfg.Listen = *listen
		case "faces":
			cfg.Faces = strings.Split(*faces, ",")
		case "strict":
			cfg.Strict = *strict
		case "validate":
			cfg.Validate = *validate
		case "reject-tinted":
			cfg.RejectTinted = *rejectTinted
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Check(); err != nil {
		log.Fatal(err)
	}
	setupLogging(cfg.LogLevel)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args[0] == "fetch" {
		v := cfg.Version
		if len(args) > 1 {
			v = args[1]
		}
		if v == "" {
			v = "latest"
		}
		if err := rp.DownloadMinecraftJar(ctx, jarPath(cfg, v), v); err != nil {
			log.Fatal(err)
		}
		return
	}

	src, closer, err := openPack(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	resolver := render.NewResolver(src, render.Options{
		Concurrency:  cfg.Concurrency,
		RejectTinted: cfg.RejectTinted,
		Logger:       slog.Default(),
	})
	defaultFaces, err := cfg.DefaultFaces()
	if err != nil {
		log.Fatal(err)
	}

	needArgs := func(n int) {
		if len(args) < n+1 {
			usage()
			os.Exit(2)
		}
	}

	switch args[0] {
	case "blocks":
		names, err := resolver.BlockNames(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(strings.Join(names, "\n"))
	case "options":
		needArgs(1)
		opts, err := resolver.StateOptions(ctx, args[1])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(opts)
	case "model":
		needArgs(1)
		model, err := resolver.Model(ctx, args[1])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(model)
	case "render":
		needArgs(1)
		state, err := render.ParseState(strings.Join(args[2:], ","))
		if err != nil {
			log.Fatal(err)
		}
		rendered, err := resolver.Render(ctx, args[1], state, defaultFaces)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(rendered)
	case "export":
		needArgs(1)
		sink, err := store.Open(args[1])
		if err != nil {
			log.Fatal(err)
		}
		blocks := lo.Map(args[2:], func(b string, _ int) string { return rp.RemoveDefaultPrefix(b) })
		n, err := store.Export(ctx, resolver, sink, blocks, defaultFaces, slog.Default())
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatal(err)
		}
		slog.Info("export done", "records", n, "out", args[1])
	case "serve":
		serve(cfg.Listen, resolver, defaultFaces)
	default:
		usage()
		os.Exit(2)
	}
}
