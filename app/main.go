package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jobpilot/jobstore/app/seed"
	"github.com/jobpilot/jobstore/app/server"
	"github.com/jobpilot/jobstore/app/store"
)

var opts struct {
	Listen        string  `short:"l" long:"listen" env:"JOBSTORE_LISTEN" default:":8080" description:"listen address"`
	DB            string  `long:"db" env:"JOBSTORE_DB" default:"job_store.db" description:"sqlite database location"`
	Seed          string  `long:"seed" env:"JOBSTORE_SEED" description:"yaml file with initial job urls"`
	MutationLimit float64 `long:"mutation-limit" env:"JOBSTORE_MUTATION_LIMIT" default:"10" description:"max mutating requests per second"`
	Dbg           bool    `long:"dbg" env:"JOBSTORE_DEBUG" description:"debug mode"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging"`
		Filename        string `long:"filename" env:"FILENAME" description:"log to file instead of stdout"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max log file age in days"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of rotated log files"`
		EnabledCompress bool   `long:"enabled-compress" env:"ENABLED_COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JOBSTORE_LOG"`
}

var revision = "unknown"

func main() {
	fmt.Printf("jobstored %s\n", revision)

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGQUIT and SIGTERM

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run wires the store, optional seeding and the api server together
func run(ctx context.Context) error {
	st, err := store.New(opts.DB)
	if err != nil {
		return fmt.Errorf("failed to create store at %q: %w", opts.DB, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("[WARN] failed to close store: %v", err)
		}
	}()

	if opts.Seed != "" {
		if err := seed.Apply(ctx, st, opts.Seed); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	srv, err := server.New(server.Config{Store: st, Version: revision, MutationLimit: opts.MutationLimit})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(ctx, opts.Listen)
}

// setupLogs configures lgr and returns the writer logs go to, for tests
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return os.Stdout
	}

	logOpts := []log.Option{log.Msec}
	if opts.Dbg {
		logOpts = []log.Option{log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile}
	}

	if opts.Log.Filename != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxAge:     opts.Log.MaxAge,
			MaxBackups: opts.Log.MaxBackups,
			Compress:   opts.Log.EnabledCompress,
		}
		logOpts = append(logOpts, log.Out(fileWriter), log.Err(fileWriter))
		log.Setup(logOpts...)
		return fileWriter
	}

	log.Setup(logOpts...)
	return os.Stdout
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			cancel() // terminate on SIGTERM
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM)
}
