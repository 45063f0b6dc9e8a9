package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/httputil"
)

const ackPath = "/auto_acknowledge"

// ackRequest is the body an input client posts to the server.
type ackRequest struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Session   string `json:"session,omitempty"`
}

// ackResult is the server's answer to an acknowledgment.
type ackResult struct {
	Status    string `json:"status"`
	Session   string `json:"session"`
	Blueprint string `json:"blueprint"`
	Step      int    `json:"step"`
	Total     int    `json:"total"`
	Control   bool   `json:"control"`
	Restarted bool   `json:"restarted"`
	URL       string `json:"url"`
}

// ackCommand creates the ack command, the client side of gesture and voice
// input.
func (c *CLI) ackCommand() *cobra.Command {
	var (
		serverURL string
		ackType   string
		sessionID string
		probe     bool
	)

	cmd := &cobra.Command{
		Use:   "ack [next|back]",
		Short: "Acknowledge a step on a running server",
		Long: `Send an acknowledgment to a running brickguide server, as a gesture or
voice client would. The direction defaults to next.

The server address comes from --server, $ASSYS_SERVER_URL or server.url.
Use --test to only check that the server answers.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"next", "back"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				serverURL = cfg.Server.URL
			}
			client := httputil.NewClient(serverURL)
			ctx := cmd.Context()

			if probe {
				if err := probeServer(ctx, client); err != nil {
					return err
				}
				printSuccess("Server at %s is reachable", serverURL)
				return nil
			}

			direction := "next"
			if len(args) == 1 {
				direction = args[0]
			}
			if err := errors.ValidateDirection(direction); err != nil {
				return err
			}
			res, err := sendAck(ctx, client, ackRequest{Type: ackType, Direction: direction, Session: sessionID})
			if err != nil {
				return err
			}
			printAckResult(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server base URL")
	cmd.Flags().StringVar(&ackType, "type", "gesture", "acknowledgment type: gesture or voice")
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (default: most recently active)")
	cmd.Flags().BoolVar(&probe, "test", false, "only check that the server is reachable")

	return cmd
}

// probeServer checks that the acknowledgment endpoint answers.
func probeServer(ctx context.Context, client *httputil.Client) error {
	var res ackResult
	if err := client.Get(ctx, ackPath, &res); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "probe %s", client.BaseURL)
	}
	if res.Status != "ok" {
		return errors.New(errors.ErrCodeUnavailable, "probe %s: status %q", client.BaseURL, res.Status)
	}
	return nil
}

// sendAck posts one acknowledgment.
func sendAck(ctx context.Context, client *httputil.Client, req ackRequest) (*ackResult, error) {
	var res ackResult
	if err := client.PostJSON(ctx, ackPath, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func printAckResult(res *ackResult) {
	switch {
	case res.Restarted:
		printSuccess("Started blueprint %s", StyleHighlight.Render(res.Blueprint))
	case res.Control:
		printSuccess("Control of %s", StyleHighlight.Render(res.Blueprint))
	default:
		printSuccess("%s step %s of %d", StyleHighlight.Render(res.Blueprint), StyleNumber.Render(strconv.Itoa(res.Step)), res.Total)
	}
	printDetail("session %s", res.Session)
}
