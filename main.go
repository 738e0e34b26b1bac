package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tdewolff/argp"
	"go.uber.org/zap"

	kidnet "KidArtStudio/internal/net"
	"KidArtStudio/internal/state"
	"KidArtStudio/internal/surface"
	"KidArtStudio/internal/ui"
)

type Studio struct {
	Width    int    `short:"W" default:"800" desc:"Drawing width in pixels"`
	Height   int    `short:"H" default:"600" desc:"Drawing height in pixels"`
	Port     int    `short:"p" default:"8888" desc:"Gallery wall port when hosting"`
	Join     string `short:"j" default:"" desc:"Join a gallery wall (kidart://host:port)"`
	Discover bool   `short:"d" desc:"Find a gallery wall on the local network and join it"`
	Name     string `short:"n" default:"" desc:"Artist name shown on the gallery wall"`
	Debug    bool   `desc:"Verbose development logging"`
	Link     string `index:"0" default:"" desc:"kidart:// link to join"`
}

func main() {
	root := argp.NewCmd(&Studio{}, "Kid Art Studio: a drawing board for children with a LAN gallery wall")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Studio) Run() error {
	log, err := newLogger(cmd.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	surface.SetLogger(log.Named("surface"))
	kidnet.SetLogger(log.Named("net"))
	ui.SetLogger(log.Named("ui"))

	engine, err := surface.New(cmd.Width, cmd.Height)
	if err != nil {
		return err
	}
	name := cmd.Name
	if name == "" {
		name = "Artist"
	}
	studio := ui.NewStudio(engine, name)

	link := cmd.Join
	if link == "" {
		link = cmd.Link
	}
	if link != "" && !strings.HasPrefix(link, kidnet.Scheme) {
		return fmt.Errorf("not a %s link: %q", kidnet.Scheme, link)
	}
	if link == "" && cmd.Discover {
		addr, err := discover(context.Background())
		if err != nil {
			return err
		}
		link = kidnet.Scheme + addr
	}

	if link != "" {
		runClient(log, studio, link)
		return nil
	}
	runHost(log, studio, name, cmd.Port)
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runHost(log *zap.Logger, studio *ui.Studio, name string, port int) {
	log.Info("[HOST] starting gallery wall", zap.Int("port", port))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gallery := state.NewGallery()
	srv := kidnet.NewServer(gallery)
	studio.SetWall(gallery)
	srv.OnArtwork = func(a state.Artwork) {
		studio.Received(a.Name, gallery.Len())
	}

	hostIP, err := kidnet.OutgoingIP()
	if err != nil {
		log.Warn("[HOST] no outgoing IP", zap.Error(err))
		hostIP = "127.0.0.1"
	}
	shareLink := kidnet.ShareLink(hostIP, port)

	connected := make(chan *kidnet.Client, 1)
	ui.RunApp("Kid Art Studio - Gallery Wall", shareLink, studio, func() {
		go func() {
			if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port)); err != nil {
				log.Error("[HOST] gallery wall stopped", zap.Error(err))
				studio.SetStatus("Gallery wall stopped: " + err.Error())
			}
		}()

		if mdnsServer, err := kidnet.Advertise(name, port); err != nil {
			log.Warn("[HOST] mDNS advertise failed", zap.Error(err))
		} else {
			go func() {
				<-ctx.Done()
				_ = mdnsServer.Shutdown()
			}()
		}

		// the host pins to its own wall through the same socket as everyone else
		go func() {
			client, err := dialWithRetry(ctx, fmt.Sprintf("127.0.0.1:%d", port))
			if err != nil {
				log.Warn("[HOST] could not join own gallery wall", zap.Error(err))
				return
			}
			studio.SetSharer(client)
			connected <- client
			studio.SetStatus("Gallery wall open at " + shareLink)
		}()
	})

	cancel()
	closeClient(connected)
}

func runClient(log *zap.Logger, studio *ui.Studio, link string) {
	log.Info("[CLIENT] starting", zap.String("link", link))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connected := make(chan *kidnet.Client, 1)
	ui.RunApp("Kid Art Studio", "", studio, func() {
		go func() {
			studio.SetStatus("Connecting to " + link)
			client, err := dialWithRetry(ctx, link)
			if err != nil {
				studio.SetStatus("Connection failed: " + err.Error())
				return
			}
			client.SetOnAdded(func(m kidnet.Message) {
				studio.Received(m.Name, m.Count)
			})
			studio.SetSharer(client)
			connected <- client
			studio.SetStatus("Connected to gallery wall as " + client.LocalAddr())

			<-client.Done()
			if ctx.Err() == nil {
				log.Warn("[CLIENT] disconnected from gallery wall")
				studio.SetSharer(nil)
				studio.SetStatus("Disconnected from gallery wall")
			}
		}()
	})

	cancel()
	closeClient(connected)
}

func dialWithRetry(ctx context.Context, link string) (*kidnet.Client, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		client, err := kidnet.Dial(dialCtx, link)
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}
	return nil, lastErr
}

func closeClient(connected <-chan *kidnet.Client) {
	select {
	case c := <-connected:
		_ = c.Close()
	default:
	}
}

func discover(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var (
		found string
		once  sync.Once
	)
	if err := kidnet.Browse(ctx, func(addr string) {
		once.Do(func() { found = addr })
	}); err != nil {
		return "", err
	}
	if found == "" {
		return "", errors.New("no gallery wall found on the local network")
	}
	return found, nil
}
