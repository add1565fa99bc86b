// rigctl: dev helper for a running showcase.
//
//	rigctl -collect   copy the camera and light parameters to the clipboard
//	rigctl -watch     print poses as the viewer publishes them
//	rigctl -toggle    flip presentation/dev mode
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-synth/internal/httpc"
	"github.com/teslashibe/go-synth/pkg/clipboard"
	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/scene"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Showcase base URL")
	collect := flag.Bool("collect", false, "Copy scene parameters to the clipboard")
	watch := flag.Bool("watch", false, "Print published poses until interrupted")
	toggle := flag.Bool("toggle", false, "Toggle dev mode")
	flag.Parse()

	base := strings.TrimRight(*addr, "/")
	var err error
	switch {
	case *toggle:
		err = toggleMode(base)
	case *collect:
		err = collectParams(base)
	case *watch:
		err = watchPoses(base)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rigctl: %v\n", err)
		os.Exit(1)
	}
}

const requestTimeout = 5 * time.Second

func toggleMode(base string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	body, err := httpc.Send(ctx, http.MethodPost, base+"/api/dev-mode/toggle", nil)
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func collectParams(base string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	body, err := httpc.Fetch(ctx, base+"/api/params")
	if err != nil {
		return err
	}

	// Round-trip through the scene types so a garbled payload never reaches
	// the clipboard.
	p, err := scene.DecodeParams(body)
	if err != nil {
		return err
	}
	data, err := p.Encode()
	if err != nil {
		return err
	}

	fmt.Println("=== SCENE PARAMETERS ===")
	fmt.Println(string(data))
	if err := (clipboard.System{}).WriteText(string(data)); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	fmt.Println("Parameters copied to clipboard.")
	return nil
}

func watchPoses(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/pose"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u, err)
	}
	defer conn.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}
		switch msg.Type {
		case protocol.TypePose:
			pose, err := msg.GetPoseData()
			if err != nil {
				continue
			}
			fmt.Printf("%-12s pos=(%.3f, %.3f, %.3f) rot=(%.3f, %.3f, %.3f) clip=%.2fs\n",
				pose.Mode,
				pose.Position[0], pose.Position[1], pose.Position[2],
				pose.Rotation[0], pose.Rotation[1], pose.Rotation[2],
				pose.ClipTime)
		case protocol.TypeState:
			fmt.Printf("state        %s\n", msg.Data)
		}
	}
}
