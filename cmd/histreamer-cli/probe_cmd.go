package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/player"
)

var probeCmd = &cobra.Command{
	Use:   "probe <uri>",
	Short: "Resolve and prepare a media URI without playing it, printing what was found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri := args[0]

		p := player.New(player.Callback{
			OnError: func(code foundation.ErrorCode) {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", code)
			},
		})

		if code := p.SetSource(uri); !code.OK() {
			return fmt.Errorf("set source %q: %s", uri, code)
		}
		if code := p.Prepare(); !code.OK() {
			return fmt.Errorf("prepare %q: %s", uri, code)
		}

		fmt.Println("uri:", uri)
		fmt.Println("state:", p.GetState())

		duration, code := p.GetDuration()
		switch {
		case code.OK():
			fmt.Printf("duration: %dms\n", duration/1000)
		case code == foundation.ErrorNotExisted:
			fmt.Println("duration: unknown (no container duration)")
		default:
			fmt.Println("duration: error,", code)
		}

		p.Stop()
		return nil
	},
}
