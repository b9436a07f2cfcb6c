package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vtree-dev/vtree/pkg/live"
	"github.com/vtree-dev/vtree/pkg/snapshot"
)

func serveCmd() *cobra.Command {
	var (
		addr          string
		poll          time.Duration
		history       int
		snapshotDir   string
		snapshotEvery int
		snapshotKeep  int
		s3Bucket      string
		s3Prefix      string
		docName       string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "serve <doc.html>",
		Short: "Watch an HTML file and stream patches to browsers",
		Long: `Serve an HTML file over HTTP and stream binary patch frames
over WebSocket whenever the file changes on disk.

Connected clients receive a full tree snapshot on connect, then one
frame per change. Snapshots can be persisted to a local directory or
an S3 bucket for restart recovery.

Examples:
  vtree serve page.html
  vtree serve page.html --addr :3000 --poll 100ms
  vtree serve page.html --snapshot-dir ./snapshots --snapshot-every 10
  vtree serve page.html --s3-bucket my-bucket --s3-prefix snapshots/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(args[0], serveOptions{
				addr:          addr,
				poll:          poll,
				history:       history,
				snapshotDir:   snapshotDir,
				snapshotEvery: snapshotEvery,
				snapshotKeep:  snapshotKeep,
				s3Bucket:      s3Bucket,
				s3Prefix:      s3Prefix,
				docName:       docName,
				verbose:       verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().DurationVar(&poll, "poll", 200*time.Millisecond, "File polling interval")
	cmd.Flags().IntVar(&history, "history", 100, "Patch frames kept for client resync")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "Directory for tree snapshots")
	cmd.Flags().IntVar(&snapshotEvery, "snapshot-every", 10, "Persist a snapshot every N frames")
	cmd.Flags().IntVar(&snapshotKeep, "snapshot-keep", 5, "Snapshots retained per document")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "S3 bucket for tree snapshots")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "snapshots/", "S3 key prefix")
	cmd.Flags().StringVar(&docName, "name", "default", "Document name in the snapshot store")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

type serveOptions struct {
	addr          string
	poll          time.Duration
	history       int
	snapshotDir   string
	snapshotEvery int
	snapshotKeep  int
	s3Bucket      string
	s3Prefix      string
	docName       string
	verbose       bool
}

func runServe(source string, opts serveOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	store, err := buildStore(opts)
	if err != nil {
		return err
	}
	snapshotEvery := 0
	if store != nil {
		snapshotEvery = opts.snapshotEvery
	}

	server, err := live.NewServer(live.Config{
		Address:       opts.addr,
		Source:        source,
		DocumentName:  opts.docName,
		PollInterval:  opts.poll,
		HistorySize:   opts.history,
		SnapshotEvery: snapshotEvery,
		SnapshotKeep:  opts.snapshotKeep,
	}, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}

// buildStore picks the snapshot backend: S3 when a bucket is given,
// local disk when a directory is given, otherwise none.
func buildStore(opts serveOptions) (snapshot.Store, error) {
	if opts.s3Bucket != "" {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return snapshot.NewS3Store(s3.NewFromConfig(cfg), opts.s3Bucket, opts.s3Prefix), nil
	}
	if opts.snapshotDir != "" {
		return snapshot.NewDiskStore(opts.snapshotDir)
	}
	return nil, nil
}
