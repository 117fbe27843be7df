package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/internal/flexduration"
	"github.com/chicogong/histreamer/player"
	"github.com/chicogong/histreamer/plugin"
)

var (
	playLoop   bool
	playVolume float64
	playStart  string
)

func init() {
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "restart from the beginning on end-of-stream")
	playCmd.Flags().Float64Var(&playVolume, "volume", 100, "left/right volume, 0-300")
	playCmd.Flags().StringVar(&playStart, "start", "", "seek to this position before playing; accepts \"90s\", \"01:30:00\", or \"PT1H30M\"")
}

var playCmd = &cobra.Command{
	Use:   "play <uri>",
	Short: "Play a media URI to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri := args[0]
		done := make(chan foundation.ErrorCode, 1)

		p := player.New(player.Callback{
			OnCompleted: func() {
				fmt.Println("playback complete")
				done <- foundation.Success
			},
			OnError: func(code foundation.ErrorCode) {
				done <- code
			},
			OnStateChanged: func(s string) {
				fmt.Println("state ->", s)
			},
		})

		if code := p.SetSource(uri); !code.OK() {
			return fmt.Errorf("set source %q: %s", uri, code)
		}
		if code := p.Prepare(); !code.OK() {
			return fmt.Errorf("prepare %q: %s", uri, code)
		}
		if code := p.SetLoop(playLoop); !code.OK() {
			return fmt.Errorf("set loop: %s", code)
		}
		if code := p.SetVolume(playVolume, playVolume); !code.OK() {
			return fmt.Errorf("set volume: %s", code)
		}
		if playStart != "" {
			start, err := flexduration.Parse(playStart)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			if code := p.Rewind(start.Milliseconds(), plugin.SeekForward); !code.OK() {
				return fmt.Errorf("seek to %s: %s", playStart, code)
			}
		}
		if code := p.Play(); !code.OK() {
			return fmt.Errorf("play: %s", code)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case code := <-done:
				if !code.OK() {
					return fmt.Errorf("playback failed: %s", code)
				}
				return nil
			case <-sigCh:
				p.Stop()
				return nil
			case <-ticker.C:
				if pos, ok := p.GetCurrentPosition(); ok.OK() {
					fmt.Printf("position: %dms\n", pos/1000)
				}
			}
		}
	},
}
