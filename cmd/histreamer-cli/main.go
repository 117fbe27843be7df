// Package main is histreamer-cli, a thin cobra-based embedder around the
// player package (spec.md §1's "out of scope, external collaborator"
// embedder surface, kept as ambient tooling rather than core scope).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chicogong/histreamer/config"
	"github.com/chicogong/histreamer/internal/log"

	_ "github.com/chicogong/histreamer/plugin/codec/rawcodec"
	_ "github.com/chicogong/histreamer/plugin/demux/hlsdemux"
	_ "github.com/chicogong/histreamer/plugin/demux/rawdemux"
	_ "github.com/chicogong/histreamer/plugin/sink/nullvideosink"
	_ "github.com/chicogong/histreamer/plugin/sink/ringaudiosink"
	_ "github.com/chicogong/histreamer/plugin/source/filesource"
	_ "github.com/chicogong/histreamer/plugin/source/httpsource"
	_ "github.com/chicogong/histreamer/plugin/source/s3source"
	_ "github.com/chicogong/histreamer/plugin/source/streamsource"
)

var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "histreamer-cli",
	Short: "Drive a HiStreamer player from the command line",
	Long:  "histreamer-cli embeds the histreamer player package directly, exercising its public API the way any other host application would.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "histreamer-cli: loading config:", err)
			os.Exit(1)
		}
		log.Configure(log.Config{Level: cfg.LogLevel, Service: cfg.ServiceName})
	},
}

func init() {
	rootCmd.AddCommand(playCmd, probeCmd)
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", version, commit)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
